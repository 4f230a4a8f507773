package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/graph"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/model"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/repo"
	"github.com/Chative-core-poc-v1/sheetsql/internal/ingest"
	"github.com/Chative-core-poc-v1/sheetsql/internal/metrics"
	"github.com/Chative-core-poc-v1/sheetsql/internal/store"
	logx "github.com/Chative-core-poc-v1/sheetsql/pkg/logger"
)

// app holds the shared resources a command needs. It is built per command
// invocation and closed when the command returns.
type app struct {
	cfg      *AppConfig
	clock    clockwork.Clock
	registry *prometheus.Registry
	metrics  *metrics.Recorder

	db       *sql.DB
	dialect  store.Dialect
	schema   *store.CachedSchemaProvider
	executor *store.Executor

	closers []func() error
}

func newApp(ctx context.Context, cfg *AppConfig) (*app, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	db, dialect, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		clock:    clockwork.NewRealClock(),
		registry: registry,
		metrics:  metrics.New(registry),
		db:       db,
		dialect:  dialect,
		schema: store.NewCachedSchemaProvider(
			store.NewSchemaProvider(db, dialect, cfg.Store.SampleRows),
			cfg.Store.SchemaCacheTTL,
		),
		executor: store.NewExecutor(db, cfg.Store.QueryTimeout, cfg.Store.MaxResultRows),
	}
	a.closers = append(a.closers, db.Close)
	return a, nil
}

// runner builds the agent graph. Only commands that talk to the model need it.
func (a *app) runner(ctx context.Context) (graph.Runner, error) {
	if a.cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	return graph.BuildAgentGraph(ctx, graph.Config{
		APIKey:        a.cfg.APIKey,
		BaseURL:       a.cfg.BaseURL,
		QueryModel:    a.cfg.Query,
		ResponseModel: a.cfg.Response,
		Agent:         a.cfg.Agent,
		Schema:        a.schema,
		Executor:      a.executor,
		Dialect:       a.dialect,
		Metrics:       a.metrics,
		Clock:         a.clock,
	})
}

// conversationRepo picks Redis when configured and process memory otherwise.
func (a *app) conversationRepo(ctx context.Context) (model.ConversationRepository, error) {
	if !a.cfg.Redis.Enabled() {
		logx.Debug().Msg("REDIS_URL not set, keeping conversation history in memory")
		return repo.NewMemoryConversationRepository(), nil
	}

	ttl, err := a.cfg.ConversationTTL()
	if err != nil {
		return nil, err
	}
	rdb, err := a.cfg.Redis.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise Redis client: %w", err)
	}
	a.closers = append(a.closers, rdb.Close)

	logx.Debug().Dur("ttl", ttl).Msg("Connected to Redis")
	return repo.NewRedisConversationRepository(rdb, ttl), nil
}

func (a *app) syncer() *ingest.Syncer {
	return ingest.NewSyncer(
		ingest.NewFetcher(a.cfg.Ingest),
		ingest.NewWriter(a.db, a.dialect),
		a.schema,
		a.clock,
		a.metrics,
	)
}

// serveMetrics exposes /metrics on METRICS_ADDR until ctx is done.
func (a *app) serveMetrics(ctx context.Context) {
	if a.cfg.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logx.Info().Str("addr", a.cfg.MetricsAddr).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Error().Err(err).Msg("Metrics server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
