package reputationservice

import (
	"log/slog"
	"time"

	httpadapter "warden/contexts/trust-safety/reputation-service/adapters/http"
	"warden/contexts/trust-safety/reputation-service/adapters/memory"
	"warden/contexts/trust-safety/reputation-service/application"
	"warden/contexts/trust-safety/reputation-service/domain/services"
	"warden/contexts/trust-safety/reputation-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository   ports.Repository
	Outbox       ports.OutboxRepository
	Standing     services.Standing
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator
	ViolationTTL time.Duration
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:         deps.Repository,
		Outbox:       deps.Outbox,
		Standing:     deps.Standing,
		Clock:        deps.Clock,
		IDGenerator:  deps.IDGenerator,
		ViolationTTL: deps.ViolationTTL,
		Logger:       deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Outbox:      store,
		Standing:    services.NewStanding(services.DefaultStandingConfig()),
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
