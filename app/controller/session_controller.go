package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apperrors "quick-quote/errors"
	"quick-quote/logger"
	"quick-quote/metrics"
	"quick-quote/models"
	"quick-quote/service"
	"quick-quote/session"
)

// SessionResponse is returned by every session endpoint
type SessionResponse struct {
	ID    string             `json:"id"`
	State session.State      `json:"state"`
	Quote models.QuoteResult `json:"quote"`
	// PendingFollowUps lists accepted deals still waiting for their follow-up answer
	PendingFollowUps []string `json:"pendingFollowUps"`
}

func newSessionResponse(id string, s session.State) SessionResponse {
	pending := []string{}
	for _, r := range s.DealResponses {
		if !r.Accepted || !r.Details.IsEmpty() {
			continue
		}
		if d, ok := models.FindDeal(s.Deals, r.ID); ok && session.RequiresFollowUp(d, s.JobDetails) {
			pending = append(pending, r.ID)
		}
	}
	return SessionResponse{ID: id, State: s, Quote: s.Quote(), PendingFollowUps: pending}
}

// JobDescriptionParser extracts job details from free text
type JobDescriptionParser interface {
	ParseJobDescription(ctx context.Context, text string) (models.JobDetailsPatch, error)
}

var _ JobDescriptionParser = (*service.ParserService)(nil)

// SessionController handles HTTP requests for quote sessions
type SessionController struct {
	store    session.Store
	parser   JobDescriptionParser
	defaults ConfigProvider
	metrics  *metrics.QuoteMetrics
	now      func() time.Time
}

// ConfigProvider returns the configuration new sessions start with
type ConfigProvider func() models.EffectiveConfig

// NewSessionController creates a new SessionController
func NewSessionController(store session.Store, parser JobDescriptionParser, defaults ConfigProvider, m *metrics.QuoteMetrics) *SessionController {
	return &SessionController{
		store:    store,
		parser:   parser,
		defaults: defaults,
		metrics:  m,
		now:      time.Now,
	}
}

// load fetches a session by the {id} URL parameter
func load(ctx context.Context, store session.Store, r *http.Request) (string, session.State, error) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return id, session.State{}, apperrors.NotFound("Session", id)
	}
	s, err := store.Get(ctx, id)
	return id, s, err
}

// mutate applies actions to the session in order and saves the result.
// Nothing is saved when an action fails.
func mutate(w http.ResponseWriter, r *http.Request, store session.Store, op string, actions ...session.Action) (string, session.State, bool) {
	ctx := r.Context()
	id, s, err := load(ctx, store, r)
	if err != nil {
		writeError(w, op, err)
		return id, s, false
	}
	for _, a := range actions {
		if s, err = session.Reduce(s, a); err != nil {
			writeError(w, op, err)
			return id, s, false
		}
	}
	if err := store.Save(ctx, id, s); err != nil {
		writeError(w, op, err)
		return id, s, false
	}
	return id, s, true
}

func (c *SessionController) respond(w http.ResponseWriter, r *http.Request, op string, actions ...session.Action) {
	id, s, ok := mutate(w, r, c.store, op, actions...)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(id, s))
}

// Create handles POST /api/sessions
func (c *SessionController) Create(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	s := session.NewStateWithConfig(c.defaults())
	if err := c.store.Save(r.Context(), id, s); err != nil {
		writeError(w, "CreateSession", err)
		return
	}
	logger.GetLogger().Infow("✅ CreateSession: session started", "session_id", id, "deals", len(s.Deals))
	writeJSON(w, http.StatusCreated, newSessionResponse(id, s))
}

// Get handles GET /api/sessions/{id}
func (c *SessionController) Get(w http.ResponseWriter, r *http.Request) {
	id, s, err := load(r.Context(), c.store, r)
	if err != nil {
		writeError(w, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(id, s))
}

// Delete handles DELETE /api/sessions/{id}
func (c *SessionController) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.store.Delete(r.Context(), id); err != nil {
		writeError(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reset handles POST /api/sessions/{id}/reset
func (c *SessionController) Reset(w http.ResponseWriter, r *http.Request) {
	c.respond(w, r, "ResetSession", session.Reset{})
}

type describeRequest struct {
	Description string `json:"description"`
}

// Describe handles POST /api/sessions/{id}/describe
// Parses a free-text description into the job form. On failure the session
// keeps its job, records the error and moves to the form for manual entry.
func (c *SessionController) Describe(w http.ResponseWriter, r *http.Request) {
	const op = "Describe"
	var req describeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}

	ctx := r.Context()
	id, s, err := load(ctx, c.store, r)
	if err != nil {
		writeError(w, op, err)
		return
	}
	s, _ = session.Reduce(s, session.StartLoading{})

	patch, parseErr := c.parser.ParseJobDescription(ctx, req.Description)
	if parseErr == nil {
		s, parseErr = session.Reduce(s, session.SetJobDetails{Patch: patch})
	}
	if parseErr != nil {
		c.metrics.ObserveParse(metrics.OutcomeFailure)
		message := service.ParseFailedMessage
		if appErr, ok := apperrors.As(parseErr); ok && appErr.Type == apperrors.ExternalParseError {
			message = appErr.Message
		}
		s, _ = session.Reduce(s, session.SetError{Message: message})
		s, _ = session.Reduce(s, session.SetStep{Step: session.StepForm})
		if err := c.store.Save(ctx, id, s); err != nil {
			writeError(w, op, err)
			return
		}
		writeError(w, op, apperrors.ExternalParse(parseErr, message))
		return
	}

	c.metrics.ObserveParse(metrics.OutcomeSuccess)
	s, _ = session.Reduce(s, session.SetStep{Step: session.StepForm})
	if err := c.store.Save(ctx, id, s); err != nil {
		writeError(w, op, err)
		return
	}
	logger.GetLogger().Infow("✅ Describe: job details extracted", "session_id", id, "rugs", len(s.JobDetails.AreaRugs))
	writeJSON(w, http.StatusOK, newSessionResponse(id, s))
}

// PatchJob handles PATCH /api/sessions/{id}/job
func (c *SessionController) PatchJob(w http.ResponseWriter, r *http.Request) {
	var patch models.JobDetailsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, "PatchJob", err)
		return
	}
	c.respond(w, r, "PatchJob", session.SetJobDetails{Patch: patch})
}

type rugRequest struct {
	Sqft float64 `json:"sqft"`
}

// AddRug handles POST /api/sessions/{id}/job/rugs
func (c *SessionController) AddRug(w http.ResponseWriter, r *http.Request) {
	const op = "AddRug"
	var req rugRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}
	_, s, err := load(r.Context(), c.store, r)
	if err != nil {
		writeError(w, op, err)
		return
	}
	c.respond(w, r, op, session.AddRug{Rug: models.AreaRug{ID: c.nextRugID(s.JobDetails.AreaRugs), Sqft: req.Sqft}})
}

// nextRugID is the current time in milliseconds, bumped past any id in use
func (c *SessionController) nextRugID(rugs []models.AreaRug) int64 {
	id := c.now().UnixMilli()
	for _, r := range rugs {
		if r.ID >= id {
			id = r.ID + 1
		}
	}
	return id
}

func rugID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "rugId"), 10, 64)
	if err != nil {
		return 0, apperrors.ValidationFailed("Invalid rug id", chi.URLParam(r, "rugId"))
	}
	return id, nil
}

// UpdateRug handles PUT /api/sessions/{id}/job/rugs/{rugId}
func (c *SessionController) UpdateRug(w http.ResponseWriter, r *http.Request) {
	const op = "UpdateRug"
	id, err := rugID(r)
	if err != nil {
		writeError(w, op, err)
		return
	}
	var req rugRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}
	c.respond(w, r, op, session.UpdateRug{ID: id, Sqft: req.Sqft})
}

// RemoveRug handles DELETE /api/sessions/{id}/job/rugs/{rugId}
func (c *SessionController) RemoveRug(w http.ResponseWriter, r *http.Request) {
	id, err := rugID(r)
	if err != nil {
		writeError(w, "RemoveRug", err)
		return
	}
	c.respond(w, r, "RemoveRug", session.RemoveRug{ID: id})
}

type stepRequest struct {
	Step session.Step `json:"step"`
}

// SetStep handles POST /api/sessions/{id}/step
func (c *SessionController) SetStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "SetStep", err)
		return
	}
	c.respond(w, r, "SetStep", session.SetStep{Step: req.Step})
}

type toggleDealRequest struct {
	Accepted bool `json:"accepted"`
}

// ToggleDealResponse tells the client whether to ask the deal's follow-up question
type ToggleDealResponse struct {
	SessionResponse
	FollowUpRequired bool                `json:"followUpRequired"`
	FollowUpQuestion string              `json:"followUpQuestion,omitempty"`
	FollowUpType     models.FollowUpType `json:"followUpType,omitempty"`
}

// ToggleDeal handles POST /api/sessions/{id}/deals/{dealId}
func (c *SessionController) ToggleDeal(w http.ResponseWriter, r *http.Request) {
	var req toggleDealRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "ToggleDeal", err)
		return
	}
	dealID := chi.URLParam(r, "dealId")
	id, s, ok := mutate(w, r, c.store, "ToggleDeal", session.ToggleDeal{DealID: dealID, Accepted: req.Accepted})
	if !ok {
		return
	}

	resp := ToggleDealResponse{SessionResponse: newSessionResponse(id, s)}
	if deal, found := models.FindDeal(s.Deals, dealID); found && req.Accepted && session.RequiresFollowUp(deal, s.JobDetails) {
		resp.FollowUpRequired = true
		resp.FollowUpQuestion = deal.FollowUpQuestion
		resp.FollowUpType = deal.FollowUpType
	}
	writeJSON(w, http.StatusOK, resp)
}

// SubmitFollowUp handles POST /api/sessions/{id}/deals/{dealId}/follow-up
func (c *SessionController) SubmitFollowUp(w http.ResponseWriter, r *http.Request) {
	var answer session.FollowUpAnswer
	if err := decodeJSON(w, r, &answer); err != nil {
		writeError(w, "SubmitFollowUp", err)
		return
	}
	c.respond(w, r, "SubmitFollowUp", session.SubmitFollowUp{DealID: chi.URLParam(r, "dealId"), Answer: answer})
}
