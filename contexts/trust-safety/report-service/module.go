package reportservice

import (
	"log/slog"
	"time"

	httpadapter "warden/contexts/trust-safety/report-service/adapters/http"
	"warden/contexts/trust-safety/report-service/adapters/memory"
	"warden/contexts/trust-safety/report-service/application/commands"
	"warden/contexts/trust-safety/report-service/application/queries"
	"warden/contexts/trust-safety/report-service/domain/services"
	"warden/contexts/trust-safety/report-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Create  commands.CreateReportUseCase
	Update  commands.UpdateStatusUseCase
	Queries queries.QueryUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Repository     ports.Repository
	Reputations    ports.ReputationReader
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxRepository
	Engine         services.PriorityEngine
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	create := commands.CreateReportUseCase{
		Repository:  deps.Repository,
		Reputations: deps.Reputations,
		Outbox:      deps.Outbox,
		Engine:      deps.Engine,
		Clock:       deps.Clock,
		IDGen:       deps.IDGenerator,
		Logger:      deps.Logger,
	}
	update := commands.UpdateStatusUseCase{
		Repository:     deps.Repository,
		Idempotency:    deps.Idempotency,
		Outbox:         deps.Outbox,
		Clock:          deps.Clock,
		IDGen:          deps.IDGenerator,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	query := queries.QueryUseCase{
		Repository: deps.Repository,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Create:  create,
			Update:  update,
			Queries: query,
			Logger:  deps.Logger,
		},
		Create:  create,
		Update:  update,
		Queries: query,
	}
}

func NewInMemoryModule(reputations ports.ReputationReader, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Reputations: reputations,
		Idempotency: store,
		Outbox:      store,
		Engine:      services.NewPriorityEngine(services.DefaultPriorityConfig()),
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
