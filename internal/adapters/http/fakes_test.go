package httpadapter

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/kirillkom/panchayat-sahayika/internal/config"
	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

type searchFake struct {
	page domain.SchemeSearchPage
	err  error
	got  domain.SchemeSearchRequest
}

func (f *searchFake) Search(_ context.Context, req domain.SchemeSearchRequest) (domain.SchemeSearchPage, error) {
	f.got = req
	return f.page, f.err
}

type diverseFake struct {
	items []domain.ScoredScheme
	err   error
}

func (f diverseFake) SearchDiverse(context.Context, string, int) ([]domain.ScoredScheme, error) {
	return f.items, f.err
}

type askFake struct {
	answer *domain.Answer
	err    error
	got    domain.AskRequest
}

func (f *askFake) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

type indexerFake struct {
	report domain.RebuildReport
	err    error
	calls  int

	work        time.Duration
	ctxErr      error
	hadDeadline time.Duration
}

func (f *indexerFake) Rebuild(context.Context, []domain.Scheme) (domain.RebuildReport, error) {
	return f.report, f.err
}

func (f *indexerFake) RebuildFromSource(ctx context.Context) (domain.RebuildReport, error) {
	f.calls++
	if deadline, ok := ctx.Deadline(); ok {
		f.hadDeadline = time.Until(deadline)
	}
	if f.work > 0 {
		time.Sleep(f.work)
		if err := ctx.Err(); err != nil {
			f.ctxErr = err
			return domain.RebuildReport{}, err
		}
	}
	return f.report, f.err
}

type publisherFake struct {
	calls int
	err   error
}

func (f *publisherFake) PublishSchemesReindex(context.Context) error {
	f.calls++
	return f.err
}

type ingestFake struct {
	err error
}

func (f ingestFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", io.EOF)
	}
	now := time.Now().UTC()
	return &domain.Document{
		ID:          "doc-1",
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: "doc-1_" + filename,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

type docsFake struct {
	err error
}

func (f docsFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: id, Filename: "act.pdf", MimeType: "application/pdf", Status: domain.StatusReady}, nil
}

func testConfig() config.Config {
	return config.Config{
		SchemesAlias:   "schemes",
		DocsCollection: "panchayat_docs",
		AdminAPIKey:    "secret",
		MaxUploadBytes: 1 << 20,
	}
}

func newTestHandler(cfg config.Config, svc Services) http.Handler {
	rt, err := NewRouter(cfg, svc)
	if err != nil {
		panic(err)
	}
	return rt.Handler()
}
