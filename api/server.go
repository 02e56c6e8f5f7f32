/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging through logrus, tagged with the request ID
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the manager frontend

ROUTE GROUPS:
  /api/employees/*      Employees, balances, time off
  /api/time-off/*       Deleting time off
  /api/settings         PTO rules
  /api/job-codes/*      Job code settings
  /api/store-hours      Opening hours
  /api/shift-templates  Shift templates
  /api/admin/*          Trimester close
  /api/sync/*           Backup upload and download
  /api/reports/*        XLSX export

SECURITY NOTE:
  No authentication middleware. The server is meant to run on the
  manager's machine or a trusted network.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// NewRouter creates a new router with all routes configured. origins lists
// the CORS origins allowed to call the API.
func NewRouter(h *Handler, origins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.SaveEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Get("/{id}/pto", h.GetBalance)
			r.Get("/{id}/time-off", h.ListTimeOff)
			r.Post("/{id}/time-off", h.RecordTimeOff)
			r.Get("/{id}/conflicts", h.GetConflicts)
		})

		// Time-off routes
		r.Delete("/time-off/{id}", h.DeleteTimeOff)

		// Settings routes
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.SaveSettings)

		r.Route("/job-codes", func(r chi.Router) {
			r.Get("/", h.ListJobCodes)
			r.Post("/reorder", h.ReorderJobCodes)
			r.Put("/{code}", h.SaveJobCode)
			r.Post("/{code}/rename", h.RenameJobCode)
		})

		r.Get("/store-hours", h.GetStoreHours)
		r.Put("/store-hours", h.SaveStoreHours)

		r.Route("/shift-templates", func(r chi.Router) {
			r.Get("/", h.ListShiftTemplates)
			r.Post("/", h.CreateShiftTemplate)
			r.Delete("/{id}", h.DeleteShiftTemplate)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/close-trimester", h.CloseTrimester)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Post("/upload", h.UploadBackup)
			r.Post("/download", h.DownloadBackup)
		})

		r.Get("/reports/time-off.xlsx", h.ExportTimeOff)
	})

	return r
}

// requestLogger logs one line per request once the response is written.
func requestLogger(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := logger.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     status,
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
			})
			if status >= http.StatusInternalServerError {
				entry.Warn("request failed")
				return
			}
			entry.Debug("request")
		})
	}
}
