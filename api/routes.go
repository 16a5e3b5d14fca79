package api

import (
	"net/http"

	"mdip/core/auth"
	"mdip/core/rbac"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func (s *Server) registerRoutes() {
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(s.securityHeadersMiddleware)
	s.router.Use(s.loggingMiddleware)

	s.registerObservabilityRoutes()

	h := s.handlers
	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.loginRateLimit)
			r.Post("/auth/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.withSession)

			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/me", h.Me)

			r.Route("/incidents", func(r chi.Router) {
				r.Use(s.requireCollection(rbac.CollectionIncidents))
				r.Get("/", h.ListIncidents)
				r.Post("/", h.CreateIncident)
				r.Get("/stats", h.IncidentStats)
				r.Get("/{id}", h.GetIncident)
				r.Patch("/{id}", h.UpdateIncident)
				r.Delete("/{id}", h.DeleteIncident)
			})

			r.Route("/datasets", func(r chi.Router) {
				r.Use(s.requireCollection(rbac.CollectionDatasets))
				r.Get("/", h.ListDatasets)
				r.Post("/", h.CreateDataset)
				r.Get("/stats", h.DatasetStats)
				r.Get("/{id}", h.GetDataset)
				r.Patch("/{id}", h.UpdateDataset)
				r.Delete("/{id}", h.DeleteDataset)
			})

			r.Route("/tickets", func(r chi.Router) {
				r.Use(s.requireCollection(rbac.CollectionTickets))
				r.Get("/", h.ListTickets)
				r.Post("/", h.CreateTicket)
				r.Get("/stats", h.TicketStats)
				r.Get("/{id}", h.GetTicket)
				r.Patch("/{id}", h.UpdateTicket)
				r.Delete("/{id}", h.DeleteTicket)
			})

			r.Route("/assistant/{domain}", func(r chi.Router) {
				r.Use(s.requireAssist)
				r.Post("/chat", h.AssistantChat)
				r.Post("/analyze", h.AssistantAnalyze)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/overview", h.Overview)
				r.Get("/users", h.ListUsers)
				r.Post("/users", h.CreateUser)
				r.Get("/audit", h.RecentAudit)
				r.Post("/reload-data", h.ReloadData)
			})
		})
	})
}

// requireAssist gates the assistant routes: the domain in the URL names a
// domain role, and the caller's role must hold the assist action on that
// role's collection.
func (s *Server) requireAssist(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := auth.FromContext(r.Context())
		if sess == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		domain := chi.URLParam(r, "domain")
		collection, ok := rbac.CollectionForRole(domain)
		if !ok {
			http.Error(w, "unknown assistant domain", http.StatusNotFound)
			return
		}
		if err := s.gate.Require(sess.Role, collection, rbac.ActionAssist); err != nil {
			s.logger.Printf("PERM fail %s %s user=%s role=%s need=%s.assist",
				r.Method, r.URL.Path, sess.Username, sess.Role, collection)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
