package contentanalysisservice

import (
	"log/slog"

	httpadapter "warden/contexts/trust-safety/content-analysis-service/adapters/http"
	"warden/contexts/trust-safety/content-analysis-service/adapters/memory"
	"warden/contexts/trust-safety/content-analysis-service/application"
	"warden/contexts/trust-safety/content-analysis-service/domain/services"
	"warden/contexts/trust-safety/content-analysis-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Detector   services.Detector
	Adapter    services.SignalAdapter
	Classifier ports.ClassifierClient
	Activity   ports.ActivityStore
	Reputation ports.ReputationReader
	Violations ports.ViolationRecorder
	WindowSize int
	Clock      ports.Clock
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Detector:   deps.Detector,
		Adapter:    deps.Adapter,
		Classifier: deps.Classifier,
		Activity:   deps.Activity,
		Reputation: deps.Reputation,
		Violations: deps.Violations,
		WindowSize: deps.WindowSize,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
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
		Detector:   services.NewDetector(services.DefaultDetectorConfig()),
		Adapter:    services.NewSignalAdapter(services.DefaultSignalAdapterConfig()),
		Classifier: store,
		Activity:   store,
		Reputation: store,
		Violations: store,
		Clock:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
