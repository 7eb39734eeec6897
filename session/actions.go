package session

import "quick-quote/models"

// Action is a state transition request. The set is closed: only the types
// in this file implement it.
type Action interface {
	isAction()
}

// StartLoading marks an external call in flight and clears the last error
type StartLoading struct{}

// SetStep moves the flow to another step
type SetStep struct {
	Step Step
}

// SetJobDetails overlays a partial job (from the parser or the form)
type SetJobDetails struct {
	Patch models.JobDetailsPatch
}

// UpdateJobDetail overwrites one numeric job field
type UpdateJobDetail struct {
	Field string
	Value float64
}

// SetDealResponses replaces every deal response
type SetDealResponses struct {
	Responses []models.DealResponse
}

// ToggleDeal accepts or declines one deal
type ToggleDeal struct {
	DealID   string
	Accepted bool
}

// SubmitFollowUp records the answer to an accepted deal's follow-up question
type SubmitFollowUp struct {
	DealID string
	Answer FollowUpAnswer
}

// SetError records a failure and clears loading
type SetError struct {
	Message string
}

// SetConfig switches the session to a new configuration and resets deal responses
type SetConfig struct {
	Config models.EffectiveConfig
}

// Reset starts over while keeping the loaded configuration
type Reset struct{}

// AddRug appends a rug; the caller picks its id
type AddRug struct {
	Rug models.AreaRug
}

// UpdateRug changes a rug's size
type UpdateRug struct {
	ID   int64
	Sqft float64
}

// RemoveRug drops a rug by id
type RemoveRug struct {
	ID int64
}

func (StartLoading) isAction()     {}
func (SetStep) isAction()          {}
func (SetJobDetails) isAction()    {}
func (UpdateJobDetail) isAction()  {}
func (SetDealResponses) isAction() {}
func (ToggleDeal) isAction()       {}
func (SubmitFollowUp) isAction()   {}
func (SetError) isAction()         {}
func (SetConfig) isAction()        {}
func (Reset) isAction()            {}
func (AddRug) isAction()           {}
func (UpdateRug) isAction()        {}
func (RemoveRug) isAction()        {}
