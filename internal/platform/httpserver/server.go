package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	appealservice "warden/contexts/trust-safety/appeal-service"
	contentanalysisservice "warden/contexts/trust-safety/content-analysis-service"
	reportservice "warden/contexts/trust-safety/report-service"
	reputationservice "warden/contexts/trust-safety/reputation-service"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "warden/internal/platform/httpserver/docs"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	jwtSecret  []byte
	analysis   contentanalysisservice.Module
	reputation reputationservice.Module
	reports    reportservice.Module
	appeals    appealservice.Module
}

func New(
	analysis contentanalysisservice.Module,
	reputation reputationservice.Module,
	reports reportservice.Module,
	appeals appealservice.Module,
	jwtSecret string,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		jwtSecret:  resolveJWTSecret(jwtSecret, logger),
		analysis:   analysis,
		reputation: reputation,
		reports:    reports,
		appeals:    appeals,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/analysis/whispers", s.handleAnalyzeWhisper)
	s.mux.HandleFunc("POST /v1/analysis/classifications", s.handleClassifyWhisper)

	s.mux.HandleFunc("GET /v1/reputation/{user_id}", s.handleGetReputation)
	s.mux.HandleFunc("GET /v1/reputation/{user_id}/violations", s.handleListViolations)
	s.mux.HandleFunc("POST /v1/reputation/{user_id}/violations", s.handleRecordViolation)
	s.mux.HandleFunc("POST /v1/reputation/{user_id}/suspensions", s.handleSuspendUser)
	s.mux.HandleFunc("POST /v1/reputation/suspensions/{suspension_id}/lift", s.handleLiftSuspension)

	s.mux.HandleFunc("POST /v1/reports", s.handleCreateWhisperReport)
	s.mux.HandleFunc("POST /v1/comment-reports", s.handleCreateCommentReport)
	s.mux.HandleFunc("GET /v1/reports", s.handleListReports)
	s.mux.HandleFunc("GET /v1/reports/{report_id}", s.handleGetReport)
	s.mux.HandleFunc("PATCH /v1/reports/{report_id}/status", s.handleUpdateReportStatus)
	s.mux.HandleFunc("GET /v1/targets/{target_id}/report-stats", s.handleTargetReportStats)
	s.mux.HandleFunc("GET /v1/reports/targets/{target_id}/stats", s.handleTargetReportStats)

	s.mux.HandleFunc("POST /v1/appeals", s.handleSubmitAppeal)
	s.mux.HandleFunc("GET /v1/appeals", s.handleListAppeals)
	s.mux.HandleFunc("GET /v1/appeals/{appeal_id}", s.handleGetAppeal)
	s.mux.HandleFunc("POST /v1/appeals/{appeal_id}/review", s.handleStartAppealReview)
	s.mux.HandleFunc("POST /v1/appeals/{appeal_id}/resolution", s.handleResolveAppeal)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
