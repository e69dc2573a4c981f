package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/resilience"
)

const (
	DefaultIngestSubject  = "documents.ingest"
	DefaultReindexSubject = "schemes.reindex"
	workerQueueGroup      = "sahayika-workers"
)

// Queue carries document ingestion and scheme reindex events over NATS core
// subjects with a shared worker queue group.
type Queue struct {
	conn           *nats.Conn
	ingestSubject  string
	reindexSubject string
	executor       *resilience.Executor
	logger         *slog.Logger
}

type Options struct {
	IngestSubject        string
	ReindexSubject       string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
}

func New(url string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("panchayat-sahayika"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:           conn,
		ingestSubject:  orDefault(options.IngestSubject, DefaultIngestSubject),
		reindexSubject: orDefault(options.ReindexSubject, DefaultReindexSubject),
		executor:       options.ResilienceExecutor,
		logger:         logger,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishDocumentIngested(ctx context.Context, documentID string) error {
	return q.publish(ctx, q.ingestSubject, []byte(documentID))
}

func (q *Queue) PublishSchemesReindex(ctx context.Context) error {
	return q.publish(ctx, q.reindexSubject, []byte(time.Now().UTC().Format(time.RFC3339)))
}

func (q *Queue) SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error {
	return q.subscribe(ctx, q.ingestSubject, func(handlerCtx context.Context, msg *nats.Msg) error {
		return handler(handlerCtx, string(msg.Data))
	})
}

func (q *Queue) SubscribeSchemesReindex(ctx context.Context, handler func(context.Context) error) error {
	return q.subscribe(ctx, q.reindexSubject, func(handlerCtx context.Context, _ *nats.Msg) error {
		return handler(handlerCtx)
	})
}

func (q *Queue) publish(ctx context.Context, subject string, data []byte) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, data); err != nil {
			return fmt.Errorf("nats publish %s: %w", subject, err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	return wrapTemporaryIfNeeded(err)
}

// subscribe blocks until ctx is done, then drains the subscription so
// in-flight messages finish.
func (q *Queue) subscribe(ctx context.Context, subject string, handle func(context.Context, *nats.Msg) error) error {
	sub, err := q.conn.QueueSubscribe(subject, workerQueueGroup, func(msg *nats.Msg) {
		if ctx.Err() != nil {
			return
		}
		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handle(handlerCtx, msg); err != nil {
			q.logger.Error("queue_handler_failed", "subject", subject, "payload", string(msg.Data), "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
