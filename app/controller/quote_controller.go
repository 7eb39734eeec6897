package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "quick-quote/errors"
	"quick-quote/logger"
	"quick-quote/metrics"
	"quick-quote/models"
	"quick-quote/pricing"
	"quick-quote/repository"
	"quick-quote/service"
	"quick-quote/session"
)

// QuoteController handles quote computation, rendering, delivery and history
type QuoteController struct {
	store        session.Store
	engine       *pricing.Engine
	renderer     service.PDFRenderer
	email        *service.EmailService
	repository   repository.QuoteRepositoryInterface
	defaults     ConfigProvider
	businessName string
	metrics      *metrics.QuoteMetrics
	now          func() time.Time
}

// QuoteControllerDeps groups the collaborators of a QuoteController.
// Repository may be nil when persistence is disabled.
type QuoteControllerDeps struct {
	Store        session.Store
	Engine       *pricing.Engine
	Renderer     service.PDFRenderer
	Email        *service.EmailService
	Repository   repository.QuoteRepositoryInterface
	Defaults     ConfigProvider
	BusinessName string
	Metrics      *metrics.QuoteMetrics
}

// NewQuoteController creates a new QuoteController
func NewQuoteController(deps QuoteControllerDeps) *QuoteController {
	engine := deps.Engine
	if engine == nil {
		engine = pricing.DefaultEngine()
	}
	return &QuoteController{
		store:        deps.Store,
		engine:       engine,
		renderer:     deps.Renderer,
		email:        deps.Email,
		repository:   deps.Repository,
		defaults:     deps.Defaults,
		businessName: deps.BusinessName,
		metrics:      deps.Metrics,
		now:          time.Now,
	}
}

// ComputeRequest prices a job without a session. Responses default to all
// declined. Job and Config start from the defaults, so omitted fields and
// rates keep their default values.
type ComputeRequest struct {
	Job       *models.JobDetails      `json:"job"`
	Responses []models.DealResponse   `json:"responses"`
	Config    *models.EffectiveConfig `json:"config"`
}

// Compute handles POST /api/quotes/compute
func (c *QuoteController) Compute(w http.ResponseWriter, r *http.Request) {
	const op = "ComputeQuote"
	defaults := c.defaults()
	job := models.DefaultJobDetails()
	cfg := defaults
	cfg.Deals = append([]models.Deal(nil), defaults.Deals...)
	cfg.Tips = append([]models.Tip(nil), defaults.Tips...)
	req := ComputeRequest{Job: &job, Config: &cfg}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}
	// an explicit null resets to the defaults
	if req.Job != nil {
		job = *req.Job
	} else {
		job = models.DefaultJobDetails()
	}
	if req.Config != nil {
		cfg = *req.Config
	} else {
		cfg = defaults
	}
	if cfg.Deals == nil {
		cfg.Deals = defaults.Deals
	}
	if job.ClientType == "" {
		job.ClientType = models.ClientFirstTime
	}
	if job.Membership == "" {
		job.Membership = models.MembershipNone
	}

	if err := cfg.Pricing.Validate(); err != nil {
		writeError(w, op, apperrors.ValidationFailed("invalid pricing", err.Error()))
		return
	}
	if err := job.Validate(); err != nil {
		writeError(w, op, apperrors.ValidationFailed("invalid job details", err.Error()))
		return
	}

	responses := req.Responses
	if responses == nil {
		responses = models.NewDealResponses(cfg.Deals)
	}

	result := c.engine.ComputeQuote(job, responses, cfg.Pricing, cfg.Deals)
	c.metrics.ObserveQuote("api", result.FinalTotal)
	logger.GetLogger().Infow("✅ ComputeQuote: quote computed", "final_total", result.FinalTotal)
	writeJSON(w, http.StatusOK, result)
}

func (c *QuoteController) document(s session.State) models.QuoteDocument {
	return c.engine.BuildDocument(pricing.DocumentInput{
		BusinessName: c.businessName,
		Job:          s.JobDetails,
		Responses:    s.DealResponses,
		Catalog:      s.Pricing,
		Deals:        s.Deals,
		Tips:         s.Tips,
		GeneratedAt:  c.now(),
	})
}

// SessionQuote handles GET /api/sessions/{id}/quote
func (c *QuoteController) SessionQuote(w http.ResponseWriter, r *http.Request) {
	_, s, err := load(r.Context(), c.store, r)
	if err != nil {
		writeError(w, "SessionQuote", err)
		return
	}
	doc := c.document(s)
	c.metrics.ObserveQuote("session", doc.Result.FinalTotal)
	writeJSON(w, http.StatusOK, doc)
}

// SessionPDF handles GET /api/sessions/{id}/quote/pdf
func (c *QuoteController) SessionPDF(w http.ResponseWriter, r *http.Request) {
	const op = "SessionPDF"
	id, s, err := load(r.Context(), c.store, r)
	if err != nil {
		writeError(w, op, err)
		return
	}

	pdf, err := c.renderer.Render(r.Context(), c.document(s))
	if err != nil {
		writeError(w, op, apperrors.Wrap(err, apperrors.ServerError, "Failed to render quote PDF"))
		return
	}

	logger.GetLogger().Infow("✅ SessionPDF: PDF rendered", "session_id", id, "bytes", len(pdf))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, service.QuoteFileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

type emailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Email handles POST /api/sessions/{id}/email
func (c *QuoteController) Email(w http.ResponseWriter, r *http.Request) {
	const op = "EmailQuote"
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}
	id, s, err := load(r.Context(), c.store, r)
	if err != nil {
		writeError(w, op, err)
		return
	}

	if err := c.email.SendQuote(r.Context(), req.To, req.Subject, req.Body, c.document(s)); err != nil {
		writeError(w, op, err)
		return
	}

	logger.GetLogger().Infow("✅ EmailQuote: quote sent", "session_id", id, "to", logger.MaskEmail(req.To))
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

type saveRequest struct {
	CustomerEmail string `json:"customerEmail"`
}

// Save handles POST /api/sessions/{id}/quote/save
func (c *QuoteController) Save(w http.ResponseWriter, r *http.Request) {
	const op = "SaveQuote"
	if c.repository == nil {
		writeError(w, op, apperrors.Unavailable("Quote history is not configured"))
		return
	}
	var req saveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}
	id, s, err := load(r.Context(), c.store, r)
	if err != nil {
		writeError(w, op, err)
		return
	}

	quote := models.SavedQuote{
		SessionID:     id,
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		Job:           s.JobDetails,
		Responses:     s.DealResponses,
		Result:        c.engine.ComputeQuote(s.JobDetails, s.DealResponses, s.Pricing, s.Deals),
		CreatedAt:     c.now(),
	}
	quoteID, err := c.repository.Save(r.Context(), quote)
	if err != nil {
		writeError(w, op, err)
		return
	}
	quote.ID = quoteID
	writeJSON(w, http.StatusCreated, quote)
}

// GetSaved handles GET /api/quotes/{quoteId}
func (c *QuoteController) GetSaved(w http.ResponseWriter, r *http.Request) {
	const op = "GetSavedQuote"
	if c.repository == nil {
		writeError(w, op, apperrors.Unavailable("Quote history is not configured"))
		return
	}
	raw := chi.URLParam(r, "quoteId")
	quoteID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || quoteID <= 0 {
		writeError(w, op, apperrors.ValidationFailed("Invalid quote id", raw))
		return
	}
	quote, err := c.repository.GetByID(r.Context(), quoteID)
	if err != nil {
		writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// ListSaved handles GET /api/quotes?limit=N
func (c *QuoteController) ListSaved(w http.ResponseWriter, r *http.Request) {
	const op = "ListSavedQuotes"
	if c.repository == nil {
		writeError(w, op, apperrors.Unavailable("Quote history is not configured"))
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, op, apperrors.ValidationFailed("Invalid limit", raw))
			return
		}
		limit = n
	}
	quotes, err := c.repository.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}
