package endpoints

import (
	"net/http"

	"github.com/EasterCompany/dex-runway-service/config"
	"github.com/EasterCompany/dex-runway-service/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterDeps are the collaborators the HTTP surface needs. Gatherer and Cache may be nil.
type RouterDeps struct {
	Campaigns CampaignService
	Config    *config.Config
	Cache     CacheStatus
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}

// NewRouter registers every route behind recovery, logging and CORS.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var maxBody int64
	if deps.Config != nil {
		maxBody = deps.Config.Server.MaxBodyBytes
	}
	h := NewCampaignHandlers(deps.Campaigns, maxBody, logger)

	r := mux.NewRouter()
	r.HandleFunc("/campaigns", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/campaigns/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/campaigns/{id}/final-look", h.FinalLook).Methods(http.MethodPost)

	// Routes used by the existing web frontend.
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/generate-runway", h.Create).Methods(http.MethodPost)
	api.HandleFunc("/campaign/{id}", h.Get).Methods(http.MethodGet)
	api.HandleFunc("/generate-final-look", h.LegacyFinalLook).Methods(http.MethodPost)

	r.HandleFunc("/service", ServiceHandler(deps.Config, deps.Cache)).Methods(http.MethodGet)
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	r.Use(middleware.RecoveryMiddleware(logger), middleware.LoggingMiddleware(logger))
	return middleware.CorsMiddleware(r)
}
