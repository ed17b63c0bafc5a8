package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	appealservice "warden/contexts/trust-safety/appeal-service"
	appealpg "warden/contexts/trust-safety/appeal-service/adapters/postgres"
	appealredis "warden/contexts/trust-safety/appeal-service/adapters/redis"
	appealworkers "warden/contexts/trust-safety/appeal-service/application/workers"
	appealports "warden/contexts/trust-safety/appeal-service/ports"
	contentanalysisservice "warden/contexts/trust-safety/content-analysis-service"
	cahttp "warden/contexts/trust-safety/content-analysis-service/adapters/http"
	camemory "warden/contexts/trust-safety/content-analysis-service/adapters/memory"
	caredis "warden/contexts/trust-safety/content-analysis-service/adapters/redis"
	caservices "warden/contexts/trust-safety/content-analysis-service/domain/services"
	caports "warden/contexts/trust-safety/content-analysis-service/ports"
	reportservice "warden/contexts/trust-safety/report-service"
	reportpg "warden/contexts/trust-safety/report-service/adapters/postgres"
	reportworkers "warden/contexts/trust-safety/report-service/application/workers"
	reportentities "warden/contexts/trust-safety/report-service/domain/entities"
	reportservices "warden/contexts/trust-safety/report-service/domain/services"
	reputationservice "warden/contexts/trust-safety/reputation-service"
	reputationpg "warden/contexts/trust-safety/reputation-service/adapters/postgres"
	reputationworkers "warden/contexts/trust-safety/reputation-service/application/workers"
	reputationentities "warden/contexts/trust-safety/reputation-service/domain/entities"
	reputationservices "warden/contexts/trust-safety/reputation-service/domain/services"
	"warden/internal/platform/config"
	"warden/internal/platform/db"
	"warden/internal/platform/httpserver"
	"warden/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres *db.Postgres

	reputationRelay  reputationworkers.OutboxRelay
	violationExpirer reputationworkers.ViolationExpirer
	reportRelay      reportworkers.OutboxRelay
	escalationSweep  reportworkers.EscalationSweep
	appealRelay      appealworkers.OutboxRelay
	appealExpiry     appealworkers.AppealExpiryJob

	pollInterval time.Duration
	logger       *slog.Logger
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	reputationModule := buildReputationModule(cfg, pg, logger)
	analysisModule := buildAnalysisModule(cfg, reputationModule, logger)

	reportRepo := reportpg.NewRepository(pg.DB, logger)
	reportModule := reportservice.NewModule(reportservice.Dependencies{
		Repository:     reportRepo,
		Reputations:    reputationSnapshots{service: reputationModule.Service},
		Idempotency:    reportRepo,
		Outbox:         reportRepo,
		Engine:         reportservices.NewPriorityEngine(priorityConfig(cfg)),
		Clock:          reportpg.SystemClock{},
		IDGenerator:    reportpg.UUIDGenerator{},
		IdempotencyTTL: 24 * time.Hour,
		Logger:         logger,
	})

	appealRepo := appealpg.NewRepository(pg.DB, logger)
	var appealIdempotency appealports.IdempotencyStore = appealRepo
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		appealIdempotency = appealredis.NewIdempotencyStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}
	appealModule := appealservice.NewModule(appealservice.Dependencies{
		Repository:        appealRepo,
		Violations:        violationDirectory{service: reputationModule.Service},
		Reputations:       reputationAdjuster{service: reputationModule.Service},
		Idempotency:       appealIdempotency,
		Outbox:            appealRepo,
		Clock:             appealpg.SystemClock{},
		IDGenerator:       appealpg.UUIDGenerator{},
		EligibilityWindow: cfg.AppealEligibilityWindow(),
		IdempotencyTTL:    24 * time.Hour,
		Logger:            logger,
	})

	server := httpserver.New(
		analysisModule,
		reputationModule,
		reportModule,
		appealModule,
		cfg.JWTSecret,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	publisher, err := messaging.NewPublisher(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	reputationModule := buildReputationModule(cfg, pg, logger)
	reputationRepo := reputationpg.NewRepository(pg.DB, logger)
	reportRepo := reportpg.NewRepository(pg.DB, logger)
	appealRepo := appealpg.NewRepository(pg.DB, logger)

	return &WorkerApp{
		postgres: pg,
		reputationRelay: reputationworkers.OutboxRelay{
			Outbox:    reputationRepo,
			Publisher: publisher,
			Clock:     reputationpg.SystemClock{},
			BatchSize: cfg.Worker.BatchSize,
			Logger:    logger,
		},
		violationExpirer: reputationworkers.ViolationExpirer{
			Service:   reputationModule.Service,
			BatchSize: cfg.Worker.BatchSize,
			Logger:    logger,
		},
		reportRelay: reportworkers.OutboxRelay{
			Outbox:    reportRepo,
			Publisher: publisher,
			Clock:     reportpg.SystemClock{},
			BatchSize: cfg.Worker.BatchSize,
			Logger:    logger,
		},
		escalationSweep: reportworkers.EscalationSweep{
			Repository: reportRepo,
			Outbox:     reportRepo,
			Engine:     reportservices.NewPriorityEngine(priorityConfig(cfg)),
			Clock:      reportpg.SystemClock{},
			IDGen:      reportpg.UUIDGenerator{},
			BatchSize:  cfg.Worker.BatchSize,
			Logger:     logger,
		},
		appealRelay: appealworkers.OutboxRelay{
			Outbox:    appealRepo,
			Publisher: publisher,
			Clock:     appealpg.SystemClock{},
			BatchSize: cfg.Worker.BatchSize,
			Logger:    logger,
		},
		appealExpiry: appealworkers.AppealExpiryJob{
			Repository: appealRepo,
			Outbox:     appealRepo,
			Clock:      appealpg.SystemClock{},
			IDGen:      appealpg.UUIDGenerator{},
			ReviewTTL:  cfg.AppealReviewTTL(),
			BatchSize:  cfg.Worker.BatchSize,
			Logger:     logger,
		},
		pollInterval: cfg.WorkerInterval(),
		logger:       logger,
	}, nil
}

func buildReputationModule(cfg config.Config, pg *db.Postgres, logger *slog.Logger) reputationservice.Module {
	repo := reputationpg.NewRepository(pg.DB, logger)
	return reputationservice.NewModule(reputationservice.Dependencies{
		Repository:   repo,
		Outbox:       repo,
		Standing:     reputationservices.NewStanding(standingConfig(cfg)),
		Clock:        reputationpg.SystemClock{},
		IDGenerator:  reputationpg.UUIDGenerator{},
		ViolationTTL: cfg.ViolationTTL(),
		Logger:       logger,
	})
}

func buildAnalysisModule(cfg config.Config, reputationModule reputationservice.Module, logger *slog.Logger) contentanalysisservice.Module {
	store := camemory.NewStore()

	var classifier caports.ClassifierClient = store
	if strings.TrimSpace(cfg.ClassifierURL) != "" {
		client := cahttp.NewClassifierClient(cfg.ClassifierURL, cfg.ClassifierAPIKey)
		if cfg.ClassifierTimeout > 0 {
			client.HTTPClient.Timeout = time.Duration(cfg.ClassifierTimeout) * time.Millisecond
		}
		classifier = client
	}

	var activity caports.ActivityStore = store
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		activity = caredis.NewActivityStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	return contentanalysisservice.NewModule(contentanalysisservice.Dependencies{
		Detector:   caservices.NewDetector(caservices.DefaultDetectorConfig()),
		Adapter:    caservices.NewSignalAdapter(caservices.DefaultSignalAdapterConfig()),
		Classifier: classifier,
		Activity:   activity,
		Reputation: reputationLevels{service: reputationModule.Service},
		Violations: violationSink{service: reputationModule.Service},
		Clock:      systemClock{},
		Logger:     logger,
	})
}

// standingConfig overlays the configured reputation tunables on the defaults.
func standingConfig(cfg config.Config) reputationservices.StandingConfig {
	sc := reputationservices.DefaultStandingConfig()
	for raw, weight := range cfg.Reputation.Weights {
		if level, ok := reputationentities.ParseLevel(raw); ok {
			sc.Weights[level] = weight
		}
	}
	for raw, penalty := range cfg.Reputation.Penalties {
		if severity, ok := reputationentities.ParseSeverity(raw); ok {
			sc.Penalties[severity] = penalty
		}
	}
	return sc
}

// priorityConfig overlays the configured report tunables on the defaults.
func priorityConfig(cfg config.Config) reportservices.PriorityConfig {
	pc := reportservices.DefaultPriorityConfig()
	for raw, multiplier := range cfg.Reports.CategoryMultipliers {
		if category, ok := reportentities.ParseCategory(raw); ok {
			pc.CategoryMultipliers[category] = multiplier
		}
	}
	for raw, baseline := range cfg.Reports.LevelBaselines {
		pc.LevelBaselines[strings.ToLower(strings.TrimSpace(raw))] = baseline
	}
	for raw, threshold := range cfg.Reports.EscalationThresholds {
		priority := reportentities.Priority(strings.ToUpper(strings.TrimSpace(raw)))
		if reportentities.IsValidPriority(priority) {
			pc.EscalationThresholds[priority] = threshold
		}
	}
	return pc
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.violationExpirer.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.escalationSweep.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.appealExpiry.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.reputationRelay.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.reportRelay.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.appealRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
