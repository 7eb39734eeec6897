package session

import (
	"quick-quote/models"
	"quick-quote/pricing"
)

// Step is the stage of the guided quote flow
type Step string

const (
	StepDescription Step = "description"
	StepForm        Step = "form"
	StepDeals       Step = "deals"
	StepSummary     Step = "summary"
	StepEmail       Step = "email"
)

// Valid reports whether s is a known step
func (s Step) Valid() bool {
	switch s {
	case StepDescription, StepForm, StepDeals, StepSummary, StepEmail:
		return true
	}
	return false
}

// State is one customer's quote session
type State struct {
	Step          Step                  `json:"step"`
	JobDetails    models.JobDetails     `json:"jobDetails"`
	DealResponses []models.DealResponse `json:"dealResponses"`
	Pricing       models.PricingCatalog `json:"pricing"`
	Deals         []models.Deal         `json:"deals"`
	Tips          []models.Tip          `json:"tips"`
	Loading       bool                  `json:"isLoading"`
	Error         string                `json:"error,omitempty"`
}

// NewState starts a session on the built-in configuration
func NewState() State {
	return NewStateWithConfig(models.EffectiveConfig{
		Pricing: models.DefaultPricingCatalog(),
		Deals:   pricing.DefaultDeals(),
		Tips:    pricing.DefaultTips(),
	})
}

// NewStateWithConfig starts a session on the given configuration
func NewStateWithConfig(cfg models.EffectiveConfig) State {
	deals := cloneDeals(cfg.Deals)
	return State{
		Step:          StepDescription,
		JobDetails:    models.DefaultJobDetails(),
		DealResponses: models.NewDealResponses(deals),
		Pricing:       cfg.Pricing,
		Deals:         deals,
		Tips:          cloneTips(cfg.Tips),
	}
}

// Clone returns a deep copy that shares no slices with s
func (s State) Clone() State {
	out := s
	out.JobDetails = s.JobDetails.Clone()
	out.DealResponses = cloneResponses(s.DealResponses)
	out.Deals = cloneDeals(s.Deals)
	out.Tips = cloneTips(s.Tips)
	return out
}

// Config returns the configuration the session quotes against
func (s State) Config() models.EffectiveConfig {
	return models.EffectiveConfig{
		Pricing: s.Pricing,
		Deals:   cloneDeals(s.Deals),
		Tips:    cloneTips(s.Tips),
	}
}

// Quote prices the session's current job and responses
func (s State) Quote() models.QuoteResult {
	return pricing.ComputeQuote(s.JobDetails, s.DealResponses, s.Pricing, s.Deals)
}

func cloneResponses(in []models.DealResponse) []models.DealResponse {
	out := make([]models.DealResponse, len(in))
	copy(out, in)
	return out
}

func cloneDeals(in []models.Deal) []models.Deal {
	out := make([]models.Deal, len(in))
	copy(out, in)
	return out
}

func cloneTips(in []models.Tip) []models.Tip {
	out := make([]models.Tip, len(in))
	copy(out, in)
	return out
}
