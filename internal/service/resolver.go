package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/textdao/indexer/internal/usecase"
)

const maxAttempts = 5

// ContentFetcher fetches the raw document behind a content id.
type ContentFetcher interface {
	Fetch(ctx context.Context, cid string) ([]byte, error)
}

type resolveTask struct {
	cid      string
	kind     usecase.ContentKind
	entityID string
	attempt  int
}

// ResolverService resolves registered content ids in the background and
// applies the documents to the projection. Registration never blocks: when
// the queue is full the registration is dropped with a warning, which only
// delays content enrichment, never event processing.
type ResolverService struct {
	fetcher    ContentFetcher
	projection *usecase.Projection
	logger     *slog.Logger

	queue chan resolveTask

	resolved prometheus.Counter
	failed   prometheus.Counter
	dropped  prometheus.Counter
}

func NewResolverService(fetcher ContentFetcher, queueSize int, reg prometheus.Registerer, logger *slog.Logger) *ResolverService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ResolverService{
		fetcher: fetcher,
		logger:  logger,
		queue:   make(chan resolveTask, queueSize),
		resolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "textdao",
			Subsystem: "resolver",
			Name:      "documents_resolved_total",
			Help:      "Content documents fetched and applied.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "textdao",
			Subsystem: "resolver",
			Name:      "documents_failed_total",
			Help:      "Content documents abandoned after repeated fetch failures.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "textdao",
			Subsystem: "resolver",
			Name:      "registrations_dropped_total",
			Help:      "Content registrations dropped because the queue was full.",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.resolved, s.failed, s.dropped)
	}
	return s
}

// Attach sets the projection resolved documents are applied to. The
// projection in turn registers content ids with this resolver, so the two
// are wired in separate steps. Must be called before Run.
func (s *ResolverService) Attach(projection *usecase.Projection) {
	s.projection = projection
}

// Register implements usecase.ContentRegistrar.
func (s *ResolverService) Register(cid string, kind usecase.ContentKind, entityID string) {
	task := resolveTask{cid: cid, kind: kind, entityID: entityID}
	select {
	case s.queue <- task:
	default:
		s.dropped.Inc()
		s.logger.Warn("resolver queue full, dropping registration",
			slog.String("cid", cid),
			slog.String("entity", entityID),
		)
	}
}

// Run processes the queue until ctx is cancelled.
func (s *ResolverService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-s.queue:
			s.resolve(ctx, task)
		}
	}
}

func (s *ResolverService) resolve(ctx context.Context, task resolveTask) {
	data, err := s.fetcher.Fetch(ctx, task.cid)
	if err != nil {
		s.retry(ctx, task, err)
		return
	}

	err = s.projection.ApplyContent(ctx, usecase.ContentDelivery{
		Kind:     task.kind,
		EntityID: task.entityID,
		CID:      task.cid,
		Data:     data,
	})
	if err != nil {
		s.failed.Inc()
		s.logger.WarnContext(ctx, "content could not be applied",
			slog.String("cid", task.cid),
			slog.String("entity", task.entityID),
			slog.String("error", err.Error()),
		)
		return
	}
	s.resolved.Inc()
}

func (s *ResolverService) retry(ctx context.Context, task resolveTask, cause error) {
	task.attempt++
	if task.attempt >= maxAttempts {
		s.failed.Inc()
		s.logger.WarnContext(ctx, "content fetch abandoned",
			slog.String("cid", task.cid),
			slog.String("entity", task.entityID),
			slog.String("error", cause.Error()),
		)
		return
	}

	backoff := time.Duration(task.attempt) * 10 * time.Second
	time.AfterFunc(backoff, func() {
		select {
		case s.queue <- task:
		default:
			s.dropped.Inc()
		}
	})
}
