package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FollowUpType selects how a follow-up answer is captured and routed
type FollowUpType string

const (
	FollowUpNone       FollowUpType = ""
	FollowUpNumber     FollowUpType = "number"
	FollowUpText       FollowUpType = "text"
	FollowUpUpholstery FollowUpType = "upholstery"
)

// ParseFollowUpType normalizes a follow-up type read from configuration.
// Unknown values map to FollowUpNone.
func ParseFollowUpType(s string) FollowUpType {
	switch FollowUpType(strings.ToLower(strings.TrimSpace(s))) {
	case FollowUpNumber:
		return FollowUpNumber
	case FollowUpText:
		return FollowUpText
	case FollowUpUpholstery:
		return FollowUpUpholstery
	}
	return FollowUpNone
}

// FollowUpCondition names a predicate over JobDetails
type FollowUpCondition string

const (
	ConditionNoStainGuard   FollowUpCondition = "no_stain_guard"
	ConditionNoPetTreatment FollowUpCondition = "no_pet_treatment"
	ConditionNoUpholstery   FollowUpCondition = "no_upholstery"
)

var followUpConditions = map[FollowUpCondition]func(JobDetails) bool{
	ConditionNoStainGuard:   func(j JobDetails) bool { return j.StainGuardRooms == 0 },
	ConditionNoPetTreatment: func(j JobDetails) bool { return j.PetTreatmentRooms == 0 },
	ConditionNoUpholstery:   func(j JobDetails) bool { return j.Sofas == 0 && j.LoveSeats == 0 && j.Armchairs == 0 },
}

type followUpKind int

const (
	followUpNever followUpKind = iota
	followUpAlways
	followUpConditional
)

// FollowUpRule decides whether accepting a deal needs a follow-up question.
// The zero value never asks.
type FollowUpRule struct {
	kind      followUpKind
	condition FollowUpCondition
}

// AlwaysFollowUp asks the follow-up every time the deal is accepted
func AlwaysFollowUp() FollowUpRule { return FollowUpRule{kind: followUpAlways} }

// NeverFollowUp never asks
func NeverFollowUp() FollowUpRule { return FollowUpRule{kind: followUpNever} }

// FollowUpWhen asks only while the named condition holds for the current job.
// An unknown condition behaves like AlwaysFollowUp.
func FollowUpWhen(condition FollowUpCondition) FollowUpRule {
	if _, ok := followUpConditions[condition]; !ok {
		return AlwaysFollowUp()
	}
	return FollowUpRule{kind: followUpConditional, condition: condition}
}

// FollowUpIf maps a constant flag to Always or Never
func FollowUpIf(required bool) FollowUpRule {
	if required {
		return AlwaysFollowUp()
	}
	return NeverFollowUp()
}

// Requires evaluates the rule against the job
func (r FollowUpRule) Requires(job JobDetails) bool {
	switch r.kind {
	case followUpAlways:
		return true
	case followUpConditional:
		return followUpConditions[r.condition](job)
	}
	return false
}

// MarshalJSON encodes Always/Never as booleans and conditional rules as "when:<condition>"
func (r FollowUpRule) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case followUpAlways:
		return []byte("true"), nil
	case followUpConditional:
		return json.Marshal("when:" + string(r.condition))
	}
	return []byte("false"), nil
}

// UnmarshalJSON accepts booleans, "true"/"false" strings and "when:<condition>"
func (r *FollowUpRule) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = NeverFollowUp()
		return nil
	}
	var flag bool
	if err := json.Unmarshal(data, &flag); err == nil {
		*r = FollowUpIf(flag)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("requiresFollowUp must be a boolean or string: %w", err)
	}
	if cond, ok := strings.CutPrefix(s, "when:"); ok {
		*r = FollowUpWhen(FollowUpCondition(cond))
		return nil
	}
	*r = FollowUpIf(strings.EqualFold(strings.TrimSpace(s), "true"))
	return nil
}

// Deal is an upsell offer presented after the job form
type Deal struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	RequiresFollowUp FollowUpRule `json:"requiresFollowUp"`
	FollowUpQuestion string       `json:"followUpQuestion,omitempty"`
	FollowUpType     FollowUpType `json:"followUpType,omitempty"`
	// FollowUpTarget is the numeric JobDetails field a number follow-up writes to
	FollowUpTarget string `json:"followUpTarget,omitempty"`
}

// FindDeal returns the deal with the given id
func FindDeal(deals []Deal, id string) (Deal, bool) {
	for _, d := range deals {
		if d.ID == id {
			return d, true
		}
	}
	return Deal{}, false
}

// ResponseDetails is the free-form answer recorded on a deal response:
// empty, a number, or text
type ResponseDetails struct {
	text   string
	number *float64
}

// TextDetails wraps a text answer
func TextDetails(s string) ResponseDetails { return ResponseDetails{text: s} }

// NumberDetails wraps a numeric answer
func NumberDetails(v float64) ResponseDetails { return ResponseDetails{number: &v} }

// IsEmpty reports whether nothing was recorded
func (d ResponseDetails) IsEmpty() bool { return d.number == nil && d.text == "" }

// Number returns the numeric answer, if any
func (d ResponseDetails) Number() (float64, bool) {
	if d.number == nil {
		return 0, false
	}
	return *d.number, true
}

// String renders the answer for display
func (d ResponseDetails) String() string {
	if d.number != nil {
		return strconv.FormatFloat(*d.number, 'f', -1, 64)
	}
	return d.text
}

// MarshalJSON writes a JSON number for numeric answers and a string otherwise
func (d ResponseDetails) MarshalJSON() ([]byte, error) {
	if d.number != nil {
		return json.Marshal(*d.number)
	}
	return json.Marshal(d.text)
}

// UnmarshalJSON accepts a JSON number, string or null
func (d *ResponseDetails) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = ResponseDetails{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*d = NumberDetails(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("details must be a number or string: %w", err)
	}
	*d = TextDetails(s)
	return nil
}

// DealResponse records whether the customer took a deal and any follow-up answer
type DealResponse struct {
	ID       string          `json:"id"`
	Accepted bool            `json:"accepted"`
	Details  ResponseDetails `json:"details"`
}

// NewDealResponses builds one unaccepted, empty response per deal, in catalog order
func NewDealResponses(deals []Deal) []DealResponse {
	responses := make([]DealResponse, 0, len(deals))
	for _, d := range deals {
		responses = append(responses, DealResponse{ID: d.ID})
	}
	return responses
}

// Tip is an informational recommendation shown on the quote
type Tip struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Note is an accepted deal's recorded answer, titled by the deal
type Note struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}
