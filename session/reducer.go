package session

import (
	"fmt"
	"math"

	apperrors "quick-quote/errors"
	"quick-quote/models"
)

// Reduce applies an action and returns the next state. It never modifies s;
// on error the returned state is s unchanged.
func Reduce(s State, action Action) (State, error) {
	next := s.Clone()

	switch a := action.(type) {
	case StartLoading:
		next.Loading = true
		next.Error = ""

	case SetStep:
		if !a.Step.Valid() {
			return s, apperrors.ValidationFailed("unknown step", string(a.Step))
		}
		next.Step = a.Step

	case SetJobDetails:
		job := a.Patch.Apply(next.JobDetails)
		if err := job.Validate(); err != nil {
			return s, apperrors.ValidationFailed("invalid job details", err.Error())
		}
		next.JobDetails = job
		next.Loading = false

	case UpdateJobDetail:
		job, err := next.JobDetails.WithNumericField(a.Field, a.Value)
		if err != nil {
			return s, apperrors.ValidationFailed("invalid job detail", err.Error())
		}
		next.JobDetails = job

	case SetDealResponses:
		if err := checkResponses(a.Responses, next.Deals); err != nil {
			return s, err
		}
		next.DealResponses = cloneResponses(a.Responses)

	case ToggleDeal:
		idx := responseIndex(next.DealResponses, a.DealID)
		if idx == -1 {
			return s, apperrors.ValidationFailed("unknown deal", a.DealID)
		}
		next.DealResponses[idx].Accepted = a.Accepted

	case SubmitFollowUp:
		deal, ok := models.FindDeal(next.Deals, a.DealID)
		if !ok {
			return s, apperrors.ValidationFailed("unknown deal", a.DealID)
		}
		if idx := responseIndex(next.DealResponses, a.DealID); idx == -1 || !next.DealResponses[idx].Accepted {
			return s, apperrors.ValidationFailed("deal is not accepted", a.DealID)
		}
		job, responses, err := ResolveFollowUp(next.JobDetails, next.DealResponses, deal, a.Answer)
		if err != nil {
			return s, err
		}
		next.JobDetails = job
		next.DealResponses = responses

	case SetError:
		next.Error = a.Message
		next.Loading = false

	case SetConfig:
		if err := a.Config.Pricing.Validate(); err != nil {
			return s, apperrors.ValidationFailed("invalid pricing", err.Error())
		}
		next.Pricing = a.Config.Pricing
		next.Deals = cloneDeals(a.Config.Deals)
		next.Tips = cloneTips(a.Config.Tips)
		next.DealResponses = models.NewDealResponses(next.Deals)
		next.Loading = false

	case Reset:
		next = NewStateWithConfig(s.Config())

	case AddRug:
		if a.Rug.Sqft < 0 || math.IsNaN(a.Rug.Sqft) || math.IsInf(a.Rug.Sqft, 0) {
			return s, apperrors.ValidationFailed("invalid rug", "sqft must be a non-negative number")
		}
		if rugIndex(next.JobDetails.AreaRugs, a.Rug.ID) != -1 {
			return s, apperrors.ValidationFailed("invalid rug", fmt.Sprintf("rug id %d already exists", a.Rug.ID))
		}
		next.JobDetails.AreaRugs = append(next.JobDetails.AreaRugs, a.Rug)

	case UpdateRug:
		idx := rugIndex(next.JobDetails.AreaRugs, a.ID)
		if idx == -1 {
			return s, apperrors.NotFound("Rug", a.ID)
		}
		if a.Sqft < 0 || math.IsNaN(a.Sqft) || math.IsInf(a.Sqft, 0) {
			return s, apperrors.ValidationFailed("invalid rug", "sqft must be a non-negative number")
		}
		next.JobDetails.AreaRugs[idx].Sqft = a.Sqft

	case RemoveRug:
		idx := rugIndex(next.JobDetails.AreaRugs, a.ID)
		if idx == -1 {
			return s, apperrors.NotFound("Rug", a.ID)
		}
		rugs := next.JobDetails.AreaRugs
		next.JobDetails.AreaRugs = append(rugs[:idx:idx], rugs[idx+1:]...)

	default:
		return s, apperrors.InternalServerError(fmt.Sprintf("unhandled action %T", action))
	}

	return next, nil
}

func responseIndex(responses []models.DealResponse, id string) int {
	for i, r := range responses {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func rugIndex(rugs []models.AreaRug, id int64) int {
	for i, r := range rugs {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// checkResponses requires exactly one response per catalog deal
func checkResponses(responses []models.DealResponse, deals []models.Deal) error {
	if len(responses) != len(deals) {
		return apperrors.ValidationFailed("invalid deal responses", fmt.Sprintf("expected %d responses, got %d", len(deals), len(responses)))
	}
	seen := make(map[string]bool, len(responses))
	for _, r := range responses {
		if _, ok := models.FindDeal(deals, r.ID); !ok {
			return apperrors.ValidationFailed("unknown deal", r.ID)
		}
		if seen[r.ID] {
			return apperrors.ValidationFailed("invalid deal responses", fmt.Sprintf("deal %q answered twice", r.ID))
		}
		seen[r.ID] = true
	}
	return nil
}
