package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/kirillkom/panchayat-sahayika/internal/config"
	"github.com/kirillkom/panchayat-sahayika/internal/core/ports"
	"github.com/kirillkom/panchayat-sahayika/internal/core/usecase"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/cache/redisembed"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/catalog"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/chunking"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/extractor"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/extractor/pdfdoc"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/llm/openai"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/queue/nats"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/rerank/crossencoder"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/resilience"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/vector/memory"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/vector/qdrant"
	"github.com/kirillkom/panchayat-sahayika/internal/observability/metrics"
)

// App holds the wired use cases. Optional parts stay nil when their backing
// service is not configured: Diverse without RERANK_URL, Queue and Ingest
// without WithQueue.
type App struct {
	Config     config.Config
	EmbedModel string

	Queue     ports.MessageQueue
	DocRepo   *postgres.DocumentRepository
	Schemes   *postgres.SchemeRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	QueryUC   ports.DocumentRetriever
	SearchUC  ports.SchemeSearcher
	Diverse   ports.DiverseSearcher
	AskUC     ports.AskService
	IndexUC   *usecase.SchemeIndexUseCase

	closeFns []func()
}

type options struct {
	metrics   *metrics.PipelineMetrics
	withQueue bool
	logger    *slog.Logger
}

type Option func(*options)

// WithMetrics exports cache, retry, breaker and rebuild events.
func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithQueue connects NATS, enabling document ingestion and queued reindex.
func WithQueue() Option {
	return func(o *options) { o.withQueue = true }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{Config: cfg}
	if err := app.wire(ctx, o); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wire(ctx context.Context, o options) error {
	cfg := a.Config

	params, err := rankingParams(cfg.RankingConfigFile)
	if err != nil {
		return err
	}

	executorOpts := []resilience.Option{resilience.WithLogger(o.logger)}
	if o.metrics != nil {
		executorOpts = append(executorOpts, resilience.WithObserver(o.metrics))
	}
	executor := resilience.NewExecutor(resilienceConfig(cfg.ResilienceConfig), executorOpts...)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	a.closeFns = append(a.closeFns, func() { _ = db.Close() })
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	docRepo := postgres.NewDocumentRepository(db)
	a.DocRepo = docRepo
	a.Schemes = postgres.NewSchemeRepository(db)

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder, model, err := a.newEmbedder(ctx, o, ollamaClient, executor)
	if err != nil {
		return err
	}
	a.EmbedModel = model

	schemeIndex, docIndex := newVectorIndexes(cfg, executor)

	source, err := schemeSource(cfg, db)
	if err != nil {
		return err
	}

	generator := ollama.NewGenerator(ollamaClient, cfg.GenTemperature)

	indexOpts := usecase.SchemeIndexOptions{
		Alias:            cfg.SchemesAlias,
		EmbedBatchSize:   cfg.EmbedBatchSize,
		EmbedConcurrency: cfg.EmbedConcurrency,
	}
	if o.metrics != nil {
		indexOpts.Observer = o.metrics
	}
	a.IndexUC = usecase.NewSchemeIndexUseCase(embedder, schemeIndex, source, indexOpts)

	searchUC := usecase.NewSchemeSearchUseCase(embedder, schemeIndex, cfg.SchemesAlias, params)
	a.SearchUC = searchUC
	if cfg.RerankURL != "" {
		a.Diverse = usecase.NewDiverseSearchUseCase(embedder, schemeIndex, crossencoder.New(cfg.RerankURL, executor), cfg.SchemesAlias, params)
	}

	queryUC := usecase.NewDocumentQueryUseCase(embedder, docIndex)
	a.QueryUC = queryUC
	a.AskUC = usecase.NewAskUseCase(searchUC, queryUC, generator, usecase.NewModeSelector(params), usecase.DefaultAskOptions())

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}
	textExtractor := extractor.NewRouter(pdfdoc.NewExtractor(storage), plaintext.NewExtractor(storage))
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	a.ProcessUC = usecase.NewProcessDocumentUseCase(docRepo, textExtractor, chunker, embedder, docIndex)

	if o.withQueue {
		queue, err := nats.New(cfg.NATSURL, nats.Options{
			IngestSubject:      cfg.NATSIngestSubject,
			ReindexSubject:     cfg.NATSReindexSubject,
			ResilienceExecutor: executor,
			Logger:             o.logger,
		})
		if err != nil {
			return fmt.Errorf("init message queue: %w", err)
		}
		a.closeFns = append(a.closeFns, queue.Close)
		a.Queue = queue
		a.IngestUC = usecase.NewIngestDocumentUseCase(docRepo, storage, queue)
	}
	return nil
}

func (a *App) newEmbedder(ctx context.Context, o options, ollamaClient *ollama.Client, executor *resilience.Executor) (ports.Embedder, string, error) {
	cfg := a.Config

	var (
		base  ports.Embedder
		model string
	)
	switch cfg.EmbedProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
			return nil, "", fmt.Errorf("EMBED_PROVIDER=openai requires OPENAI_API_KEY or OPENAI_BASE_URL")
		}
		emb := openai.NewEmbedder(openai.Config{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.OpenAIEmbedModel,
			Dimensions: cfg.OpenAIDimensions,
		}, executor)
		base, model = emb, "openai:"+emb.Model()
	case "ollama", "":
		base, model = ollama.NewEmbedder(ollamaClient), "ollama:"+ollamaClient.EmbedModel()
	default:
		return nil, "", fmt.Errorf("unknown EMBED_PROVIDER %q", cfg.EmbedProvider)
	}

	if cfg.RedisAddr == "" {
		return base, model, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	a.closeFns = append(a.closeFns, func() { _ = rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Cache errors fall through to the inner embedder.
		o.logger.Warn("embedding_cache_unreachable", "addr", cfg.RedisAddr, "error", err)
	}
	var observer redisembed.CacheObserver
	if o.metrics != nil {
		observer = o.metrics
	}
	return redisembed.New(base, redisembed.NewRedisStore(rdb, cfg.EmbedCacheTTL), model, observer), model, nil
}

func newVectorIndexes(cfg config.Config, executor *resilience.Executor) (ports.SchemeIndex, ports.DocumentIndex) {
	if cfg.VectorBackend == "memory" {
		ix := memory.New(cfg.DocsCollection)
		return ix, ix
	}
	client := qdrant.New(cfg.QdrantURL, executor)
	return client, qdrant.NewDocumentIndex(client, cfg.DocsCollection)
}

func schemeSource(cfg config.Config, db *sql.DB) (ports.SchemeSource, error) {
	switch cfg.SchemeSource {
	case "json", "":
		return catalog.NewJSONFile(cfg.SchemeSourcePath), nil
	case "xlsx":
		return catalog.NewXLSXFile(cfg.SchemeSourcePath, cfg.SchemeSheet), nil
	case "postgres":
		return postgres.NewSchemeRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown SCHEME_SOURCE %q", cfg.SchemeSource)
	}
}

func resilienceConfig(c config.Resilience) resilience.Config {
	out := resilience.DefaultConfig()
	out.RetryMaxAttempts = c.RetryMaxAttempts
	out.RetryInitialBackoff = c.RetryInitialBackoff
	out.RetryMaxBackoff = c.RetryMaxBackoff
	out.BreakerEnabled = c.BreakerEnabled
	out.BreakerOpenTimeout = c.BreakerOpenTimeout
	return out
}

// RebuildOnStartup rebuilds the scheme index when INDEX_ON_STARTUP is set.
// Failures are logged; the previous alias target keeps serving.
func (a *App) RebuildOnStartup(ctx context.Context) {
	if !a.Config.IndexOnStartup {
		return
	}
	if _, err := a.IndexUC.RebuildFromSource(ctx); err != nil {
		slog.Error("startup_rebuild_failed", "error", err)
	}
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}
