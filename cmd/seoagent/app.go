package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"seo-article-agent/internal/config"
	"seo-article-agent/internal/domain/ports/adapter"
	aiAdapters "seo-article-agent/internal/infra/adapters/ai"
	"seo-article-agent/internal/infra/adapters/search"
	tele "seo-article-agent/internal/infra/adapters/telegram"
	"seo-article-agent/internal/infra/db/jobstore"
	pg "seo-article-agent/internal/infra/db/postgres"
	"seo-article-agent/internal/infra/db/sqlite"
	"seo-article-agent/internal/infra/elasticsearch"
	"seo-article-agent/internal/infra/kafka"
	"seo-article-agent/internal/infra/logging"
	"seo-article-agent/internal/infra/metrics"
	red "seo-article-agent/internal/infra/redis"
	"seo-article-agent/internal/infra/telegram"
	"seo-article-agent/internal/infra/web"
	"seo-article-agent/internal/infra/worker"
	"seo-article-agent/internal/usecase"
)

// app holds the wired dependencies of one process.
type app struct {
	cfg     *config.Config
	log     *zerolog.Logger
	gen     usecase.GenerationUseCase
	limiter web.SubmitLimiter

	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("close")
		}
	}
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	a := &app{cfg: cfg, log: log}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Job store ----
	backend, err := openBackend(ctx, a)
	if err != nil {
		a.Close()
		return nil, err
	}
	store := jobstore.New(backend)

	// ---- Search (+ Redis cache and lock) ----
	var provider adapter.SearchProvider = search.NewMockProvider()
	var locker adapter.JobLocker
	if cfg.Redis.URL != "" {
		rc, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable; running without cache and lock")
		} else {
			a.closers = append(a.closers, rc.Close)
			provider = red.NewCachedSearchProvider(provider, rc, cfg.Redis.TTL, log)
			locker = red.NewLocker(rc)
			a.limiter = red.NewRateLimiter(rc)
		}
	}

	// ---- AI ----
	ai, modelName, err := buildAI(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	log.Info().Str("provider", ai.Provider()).Str("model", modelName).Msg("ai adapter ready")

	// ---- Event sinks ----
	// Remote sinks are delivered off the pipeline path through the worker pool.
	var remote adapter.MultiSink
	if len(cfg.Kafka.Brokers) > 0 {
		pub := kafka.NewEventPublisher(kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		a.closers = append(a.closers, pub.Close)
		remote = append(remote, pub)
	}
	if len(cfg.Elasticsearch.Addresses) > 0 {
		idx, err := elasticsearch.NewArticleIndexer(cfg.Elasticsearch)
		if err != nil {
			a.Close()
			return nil, err
		}
		remote = append(remote, idx)
	}
	if cfg.Telegram.Token != "" {
		var bot adapter.TelegramBotAdapter
		if cfg.Runtime.Dev {
			bot = tele.NewNoopBotAdapter(log)
		} else if bot, err = tele.NewRealBotAdapter(cfg.Telegram.Token); err != nil {
			a.Close()
			return nil, fmt.Errorf("telegram: %w", err)
		}
		remote = append(remote, telegram.NewNotifier(bot, cfg.Telegram.ChatID))
	}

	sinks := adapter.MultiSink{logging.NewEventSink(log), metrics.EventSink{}}
	if len(remote) > 0 {
		pool := worker.NewPool(4, 256, log)
		pool.Start(ctx)
		a.closers = append(a.closers, func() error { pool.Stop(); return nil })
		sinks = append(sinks, worker.NewAsyncSink(pool, remote, 10*time.Second))
	}

	observer := metrics.Observer{}
	a.gen = usecase.NewGenerationUseCase(usecase.GenerationDeps{
		Jobs:     store,
		Analyzer: usecase.NewSERPAnalyzer(provider),
		Writer:   usecase.NewArticleGenerator(ai, modelName, log, observer),
		Events:   sinks,
		Locker:   locker,
		LockTTL:  cfg.Redis.LockTTL,
		Observer: observer,
		Log:      log,
	})
	return a, nil
}

func openBackend(ctx context.Context, a *app) (jobstore.Backend, error) {
	switch a.cfg.Database.Driver {
	case "postgres":
		pool, err := pg.Connect(ctx, a.cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		b := pg.NewJobBackend(pool)
		if err := b.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		go reportPoolStats(ctx, pool)
		return b, nil
	default:
		b, err := sqlite.Open(ctx, a.cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, b.Close)
		return b, nil
	}
}

func reportPoolStats(ctx context.Context, pool *pgxpool.Pool) {
	t := time.NewTicker(15 * time.Second)
	defer t.Stop()
	for {
		s := pool.Stat()
		metrics.SetDBPoolStats(s.TotalConns(), s.IdleConns(), s.AcquiredConns())
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// buildAI wires the configured providers behind the router, the concurrency
// limiter and the metrics wrapper. Dev mode always uses the offline adapter.
func buildAI(ctx context.Context, cfg *config.Config) (adapter.AIServiceAdapter, string, error) {
	providers := map[string]adapter.AIServiceAdapter{
		"offline": aiAdapters.NewOfflineAdapter(),
	}
	defaultProvider, modelName := cfg.AI.Provider, cfg.AI.DefaultModel
	if cfg.Runtime.Dev {
		defaultProvider, modelName = "offline", aiAdapters.OfflineModel
	} else {
		if cfg.AI.OpenAIKey != "" {
			oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.OpenAIBaseURL, cfg.AI.DefaultModel, cfg.AI.MaxOutputTokens, cfg.AI.Timeout)
			if err != nil {
				return nil, "", fmt.Errorf("openai adapter: %w", err)
			}
			providers["openai"] = oa
		}
		if cfg.AI.GeminiKey != "" {
			ga, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, cfg.AI.MaxOutputTokens, cfg.AI.Timeout)
			if err != nil {
				return nil, "", fmt.Errorf("gemini adapter: %w", err)
			}
			providers["gemini"] = ga
		}
	}

	var ai adapter.AIServiceAdapter = aiAdapters.NewMultiAIAdapter(defaultProvider, providers, cfg.AI.ModelProviders)
	ai = aiAdapters.NewLimitedAI(ai, cfg.AI.ConcurrentLimit)
	ai = aiAdapters.NewMeteredAI(ai)
	return ai, modelName, nil
}
