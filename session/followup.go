package session

import (
	"fmt"
	"math"

	apperrors "quick-quote/errors"
	"quick-quote/models"
)

// UpholsteryCounts is the answer to an upholstery follow-up
type UpholsteryCounts struct {
	Sofas     int `json:"sofas"`
	LoveSeats int `json:"loveSeats"`
	Armchairs int `json:"armchairs"`
}

// FollowUpAnswer carries whichever value the follow-up question captured.
// Example JSON:
//
//	{"number": 3}
//	{"text": "Instagram"}
//	{"upholstery": {"sofas": 1, "loveSeats": 0, "armchairs": 2}}
type FollowUpAnswer struct {
	Number     *float64          `json:"number,omitempty"`
	Text       string            `json:"text,omitempty"`
	Upholstery *UpholsteryCounts `json:"upholstery,omitempty"`
}

// RequiresFollowUp reports whether accepting deal should prompt its question
func RequiresFollowUp(deal models.Deal, job models.JobDetails) bool {
	return deal.RequiresFollowUp.Requires(job)
}

// ResolveFollowUp routes a follow-up answer and returns the updated job and responses.
// A number follow-up with a target overwrites that job field, an upholstery
// follow-up overwrites the three upholstery counts, and anything else is stored
// on the response only. Resubmitting replaces the earlier answer.
func ResolveFollowUp(job models.JobDetails, responses []models.DealResponse, deal models.Deal, answer FollowUpAnswer) (models.JobDetails, []models.DealResponse, error) {
	idx := -1
	for i, r := range responses {
		if r.ID == deal.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return job, responses, apperrors.ValidationFailed("unknown deal", fmt.Sprintf("no response for deal %q", deal.ID))
	}

	var details models.ResponseDetails
	switch {
	case deal.FollowUpType == models.FollowUpNumber && deal.FollowUpTarget != "":
		if answer.Number == nil {
			return job, responses, apperrors.ValidationFailed("a number is required", deal.FollowUpQuestion)
		}
		updated, err := job.WithNumericField(deal.FollowUpTarget, *answer.Number)
		if err != nil {
			return job, responses, apperrors.ValidationFailed("invalid follow-up answer", err.Error())
		}
		job = updated
		details = models.NumberDetails(*answer.Number)

	case deal.FollowUpType == models.FollowUpUpholstery && answer.Upholstery != nil:
		u := *answer.Upholstery
		if u.Sofas < 0 || u.LoveSeats < 0 || u.Armchairs < 0 {
			return job, responses, apperrors.ValidationFailed("invalid follow-up answer", "upholstery counts must not be negative")
		}
		job = job.Clone()
		job.Sofas, job.LoveSeats, job.Armchairs = u.Sofas, u.LoveSeats, u.Armchairs
		details = models.TextDetails(fmt.Sprintf("Sofas: %d, Love Seats: %d, Armchairs: %d", u.Sofas, u.LoveSeats, u.Armchairs))

	case answer.Number != nil:
		if math.IsNaN(*answer.Number) || math.IsInf(*answer.Number, 0) {
			return job, responses, apperrors.ValidationFailed("invalid follow-up answer", "number must be finite")
		}
		details = models.NumberDetails(*answer.Number)

	default:
		details = models.TextDetails(answer.Text)
	}

	updated := cloneResponses(responses)
	updated[idx].Details = details
	return job, updated, nil
}
