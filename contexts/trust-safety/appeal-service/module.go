package appealservice

import (
	"log/slog"
	"time"

	httpadapter "warden/contexts/trust-safety/appeal-service/adapters/http"
	"warden/contexts/trust-safety/appeal-service/adapters/memory"
	"warden/contexts/trust-safety/appeal-service/application/commands"
	"warden/contexts/trust-safety/appeal-service/application/queries"
	"warden/contexts/trust-safety/appeal-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Submit  commands.SubmitAppealUseCase
	Review  commands.StartReviewUseCase
	Resolve commands.ResolveAppealUseCase
	Queries queries.QueryUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Repository        ports.Repository
	Violations        ports.ViolationReader
	Reputations       ports.ReputationApplier
	Idempotency       ports.IdempotencyStore
	Outbox            ports.OutboxRepository
	Clock             ports.Clock
	IDGenerator       ports.IDGenerator
	EligibilityWindow time.Duration
	IdempotencyTTL    time.Duration
	Logger            *slog.Logger
}

func NewModule(deps Dependencies) Module {
	submit := commands.SubmitAppealUseCase{
		Repository:        deps.Repository,
		Violations:        deps.Violations,
		Outbox:            deps.Outbox,
		Clock:             deps.Clock,
		IDGen:             deps.IDGenerator,
		EligibilityWindow: deps.EligibilityWindow,
		Logger:            deps.Logger,
	}
	review := commands.StartReviewUseCase{
		Repository: deps.Repository,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGenerator,
		Logger:     deps.Logger,
	}
	resolve := commands.ResolveAppealUseCase{
		Repository:     deps.Repository,
		Reputations:    deps.Reputations,
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
			Submit:  submit,
			Review:  review,
			Resolve: resolve,
			Queries: query,
			Logger:  deps.Logger,
		},
		Submit:  submit,
		Review:  review,
		Resolve: resolve,
		Queries: query,
	}
}

func NewInMemoryModule(reputations ports.ReputationApplier, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Violations:  store,
		Reputations: reputations,
		Idempotency: store,
		Outbox:      store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
