package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"mdip/api/handlers"
	"mdip/config"
	"mdip/core/assistant"
	"mdip/core/auth"
	"mdip/core/janitor"
	"mdip/core/rbac"
	"mdip/core/store"
	"mdip/core/utils"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	cfg            *config.AppConfig
	router         chi.Router
	httpServer     *http.Server
	logger         *utils.Logger
	db             *sql.DB
	sessionManager *auth.SessionManager
	authSvc        *auth.Service
	gate           *rbac.Gate
	audits         store.AuditStore
	handlers       *handlers.Handlers
	janitor        *janitor.Janitor
	loginLimiter   *requestLimiter
	metrics        *metricsRegistry
}

func NewServer(cfg *config.AppConfig, db *sql.DB, logger *utils.Logger) (*Server, error) {
	users := store.NewUsersStore(db)
	sessions := store.NewSessionsStore(db)
	audits := store.NewAuditStore(db)
	incidents := store.NewIncidentsStore(db)
	datasets := store.NewDatasetsStore(db)
	tickets := store.NewTicketsStore(db, store.SLAThresholds{
		Urgent: cfg.SLA.UrgentHours,
		High:   cfg.SLA.HighHours,
		Medium: cfg.SLA.MediumHours,
		Low:    cfg.SLA.LowHours,
	})

	gate, err := rbac.NewGate()
	if err != nil {
		return nil, err
	}
	authSvc := auth.NewService(users, audits, logger)
	sessionManager := auth.NewSessionManager(sessions, cfg.SessionTTL, logger)
	assistantSvc := assistant.NewService(assistant.Options{
		BaseURL: cfg.Assistant.BaseURL,
		Model:   cfg.Assistant.Model,
		Timeout: time.Duration(cfg.Assistant.TimeoutSec) * time.Second,
		Keys: map[string]string{
			store.RoleCybersecurity: cfg.Assistant.CyberKey,
			store.RoleDatascience:   cfg.Assistant.DataKey,
			store.RoleITOperations:  cfg.Assistant.ITKey,
		},
	}, incidents, datasets, tickets, logger)

	metrics := newMetricsRegistry()
	s := &Server{
		cfg:            cfg,
		router:         chi.NewRouter(),
		logger:         logger,
		db:             db,
		sessionManager: sessionManager,
		authSvc:        authSvc,
		gate:           gate,
		audits:         audits,
		loginLimiter:   newLimiter(10, time.Minute),
		metrics:        metrics,
		handlers: &handlers.Handlers{
			Cfg:            cfg,
			DB:             db,
			Logger:         logger,
			Auth:           authSvc,
			Sessions:       sessionManager,
			Gate:           gate,
			Audits:         audits,
			Incidents:      incidents,
			Datasets:       datasets,
			Tickets:        tickets,
			Assistant:      assistantSvc,
			AssistantUsage: metrics.observeAssistant,
		},
	}
	if cfg.Janitor.Enabled {
		s.janitor = janitor.New(sessions, audits, cfg.Janitor.Schedule, cfg.Janitor.AuditRetentionDays, logger)
	}
	s.registerRoutes()
	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) Start() error {
	if s.janitor != nil {
		if err := s.janitor.Start(); err != nil {
			return err
		}
	}
	s.logger.Printf("listening on %s", s.cfg.ListenAddr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.janitor != nil {
		s.janitor.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured router, used by the HTTP tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
