package pricing

import (
	"time"

	"quick-quote/models"
)

// DocumentInput is the session snapshot a quote document is built from
type DocumentInput struct {
	BusinessName string
	Job          models.JobDetails
	Responses    []models.DealResponse
	Catalog      models.PricingCatalog
	Deals        []models.Deal
	Tips         []models.Tip
	GeneratedAt  time.Time
}

// BuildNotes lists accepted responses that carry an answer, titled by their deal
func BuildNotes(responses []models.DealResponse, deals []models.Deal) []models.Note {
	notes := []models.Note{}
	for _, r := range responses {
		if !r.Accepted || r.Details.IsEmpty() {
			continue
		}
		title := "Note"
		if d, ok := models.FindDeal(deals, r.ID); ok && d.Title != "" {
			title = d.Title
		}
		notes = append(notes, models.Note{Title: title, Detail: r.Details.String()})
	}
	return notes
}

// BuildDocument prices the snapshot with the default policy and assembles the rendering view
func BuildDocument(in DocumentInput) models.QuoteDocument {
	return DefaultEngine().BuildDocument(in)
}

// BuildDocument prices the snapshot and assembles the rendering view
func (e *Engine) BuildDocument(in DocumentInput) models.QuoteDocument {
	generatedAt := in.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	byID := make(map[string]models.DealResponse, len(in.Responses))
	for _, r := range in.Responses {
		byID[r.ID] = r
	}
	upsells := make([]models.UpsellLine, 0, len(in.Deals))
	for _, d := range in.Deals {
		r := byID[d.ID]
		upsells = append(upsells, models.UpsellLine{
			ID:       d.ID,
			Title:    d.Title,
			Accepted: r.Accepted,
			Details:  r.Details.String(),
		})
	}

	tips := make([]models.Tip, len(in.Tips))
	copy(tips, in.Tips)

	return models.QuoteDocument{
		BusinessName: in.BusinessName,
		GeneratedAt:  generatedAt,
		Job:          in.Job.Clone(),
		Result:       e.ComputeQuote(in.Job, in.Responses, in.Catalog, in.Deals),
		Upsells:      upsells,
		Notes:        BuildNotes(in.Responses, in.Deals),
		Tips:         tips,
	}
}
