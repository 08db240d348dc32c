package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/application"
)

type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeMessage(w, http.StatusOK, "ok") })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { writeMessage(w, http.StatusOK, "ready") })

	r.Route("/v1", func(r chi.Router) {
		r.Route("/records/{type}", func(r chi.Router) {
			r.Get("/", handler.listRecords)
			r.Get("/{record_id}", handler.getRecord)
			r.Get("/{record_id}/moderation", handler.getModerationState)

			r.Group(func(r chi.Router) {
				r.Use(handler.authMiddleware)
				r.Post("/", handler.createRecord)
				r.Put("/{record_id}", handler.saveRecord)
			})
		})

		r.Route("/admin/moderation", func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Get("/queue", handler.adminListQueue)
			r.Get("/{type}/{record_id}/decisions", handler.adminListDecisions)
			r.Post("/{type}/{record_id}/approve", handler.adminApprove)
			r.Post("/{type}/{record_id}/reject", handler.adminReject)
			r.Post("/{type}/{record_id}/automoderate", handler.adminAutomoderate)
			r.Post("/{type}/{record_id}", handler.adminConsoleDecision)
		})
	})
	return r
}
