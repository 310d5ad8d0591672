package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mintrader/internal/adapters/ai"
	"mintrader/internal/adapters/broker"
	"mintrader/internal/adapters/config"
	erradapters "mintrader/internal/adapters/errors/noop"
	"mintrader/internal/adapters/errors/sentry"
	"mintrader/internal/adapters/kafka"
	"mintrader/internal/adapters/postgres"
	redisadapter "mintrader/internal/adapters/redis"
	s3adapter "mintrader/internal/adapters/s3"
	"mintrader/internal/agents"
	"mintrader/internal/domain/history"
	"mintrader/internal/events"
	"mintrader/internal/pipeline"
	"mintrader/internal/reports"
	repo "mintrader/internal/repository/postgres"
	"mintrader/internal/services/risk"
	"mintrader/internal/workers"
	pkgerrors "mintrader/pkg/errors"
	"mintrader/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Get()

	tracker := buildTracker(cfg)
	logger.SetErrorTracker(tracker)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		log.Fatalf("invalid schedule timezone %q: %v", cfg.Schedule.Timezone, err)
	}

	// storage
	pg, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pg.Close()

	rdb, err := redisadapter.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	objects, err := s3adapter.NewStore(ctx, cfg.S3.Bucket, cfg.S3.Region)
	if err != nil {
		log.Fatalf("s3: %v", err)
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled() {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
	}

	// repositories and domain services
	checkpoints := repo.NewCheckpointRepository(pg.DB())
	historyRepo := repo.NewHistoryRepository(pg.DB())
	tradeLog := repo.NewTradeLogRepository(pg.DB())
	recency := history.NewService(historyRepo)
	tradeCounter := redisadapter.NewTradeCounter(rdb, loc)

	// gateways
	trading := broker.NewAlpacaClient(broker.Config{
		BaseURL:      cfg.Broker.BaseURL,
		APIKey:       cfg.Broker.APIKey,
		APISecret:    cfg.Broker.APISecret,
		Timeout:      cfg.Broker.Timeout,
		ReqPerMinute: cfg.Broker.ReqPerMinute,
	})
	provider := ai.NewOpenAIProvider(cfg.AI.OpenAIKey, cfg.AI.Timeout)

	sequencer := pipeline.NewSequencer(pipeline.Deps{
		Trading:     trading,
		Analysis:    agents.NewAnalyst(provider, cfg.AI.AnalysisModel),
		Selector:    agents.NewSelector(provider, cfg.AI.QuickModel),
		Decider:     agents.NewDecider(provider, cfg.AI.AnalysisModel),
		Summarizer:  agents.NewSummarizer(provider, cfg.AI.QuickModel),
		Recency:     recency,
		Trades:      tradeCounter,
		TradeLog:    tradeLog,
		Checkpoints: checkpoints,
		Summaries:   objects,
		Reports:     reports.NewWriter(objects),
		Events:      events.NewPublisher(producer),
	}, pipeline.Config{
		Constraints: risk.Constraints{
			MaxPositionSizePct: cfg.Trading.MaxPositionSizePct,
			MinCashReservePct:  cfg.Trading.MinCashReservePct,
			MaxTradesPerDay:    cfg.Trading.MaxTradesPerDay,
			MinHoldingDays:     cfg.Trading.MinHoldingDays,
			StopLossPct:        cfg.Trading.StopLossPct,
			MinConvictionScore: cfg.Trading.MinConvictionScore,
		},
		HardExclusionDays: cfg.Trading.HardExclusionDays,
		SoftExclusionDays: cfg.Trading.SoftExclusionDays,
		MaxAnalyses:       cfg.Trading.MaxAnalysesPerIteration,
	})

	runner := pipeline.NewRunner(sequencer, checkpoints)
	worker := workers.NewPortfolioWorker(runner, trading)

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Addr)
	}

	if cfg.Schedule.RunOnce {
		if err := worker.RunOnce(ctx); err != nil {
			log.Fatalf("iteration failed: %v", err)
		}
		return
	}

	scheduler, err := workers.NewScheduler(worker, cfg.Schedule.CronSpecs, loc)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	scheduler.Start()

	log.Infow("mintrader started",
		"env", cfg.App.Env,
		"schedule", cfg.Schedule.CronSpecs,
		"timezone", cfg.Schedule.Timezone)

	<-ctx.Done()
	log.Info("shutting down")
	scheduler.Stop()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = tracker.Flush(flushCtx)
}

func buildTracker(cfg *config.Config) pkgerrors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		return erradapters.New()
	}
	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		logger.Get().Warnf("sentry init failed, error tracking disabled: %v", err)
		return erradapters.New()
	}
	return tracker
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Get().Errorf("metrics server: %v", err)
		os.Exit(1)
	}
}
