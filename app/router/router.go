package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"quick-quote/app/controller"
	"quick-quote/logger"
)

type Controllers struct {
	Session *controller.SessionController
	Quote   *controller.QuoteController
	Config  *controller.ConfigController
	// Metrics serves /metrics when set
	Metrics http.Handler
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// requestLogger logs one line per request with its status and duration
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.GetLogger().Debugw("🌐 request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// SetupRoutes builds the HTTP handler for the quote API
func SetupRoutes(controllers *Controllers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", pingHandler)
	if controllers.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", controllers.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		// Stateless pricing and saved quote history
		r.Post("/quotes/compute", controllers.Quote.Compute)
		r.Get("/quotes", controllers.Quote.ListSaved)
		r.Get("/quotes/{quoteId}", controllers.Quote.GetSaved)

		r.Get("/config", controllers.Config.Current)
		r.Post("/config/sync", controllers.Config.Sync)
		r.Get("/config/drive/workbooks", controllers.Config.ListDriveWorkbooks)

		r.Post("/sessions", controllers.Session.Create)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", controllers.Session.Get)
			r.Delete("/", controllers.Session.Delete)
			r.Post("/reset", controllers.Session.Reset)
			r.Post("/describe", controllers.Session.Describe)
			r.Post("/step", controllers.Session.SetStep)

			r.Patch("/job", controllers.Session.PatchJob)
			r.Post("/job/rugs", controllers.Session.AddRug)
			r.Put("/job/rugs/{rugId}", controllers.Session.UpdateRug)
			r.Delete("/job/rugs/{rugId}", controllers.Session.RemoveRug)

			r.Post("/deals/{dealId}", controllers.Session.ToggleDeal)
			r.Post("/deals/{dealId}/follow-up", controllers.Session.SubmitFollowUp)

			r.Get("/quote", controllers.Quote.SessionQuote)
			r.Get("/quote/pdf", controllers.Quote.SessionPDF)
			r.Post("/quote/save", controllers.Quote.Save)
			r.Post("/email", controllers.Quote.Email)

			r.Post("/config", controllers.Config.Upload)
			r.Post("/config/drive", controllers.Config.FromDrive)
			r.Get("/config/template", controllers.Config.Template)
		})
	})

	return r
}
