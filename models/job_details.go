package models

import (
	"fmt"
	"math"
)

// ClientType distinguishes new customers from returning ones
type ClientType string

const (
	ClientFirstTime ClientType = "first-time"
	ClientRepeat    ClientType = "repeat"
)

// Valid reports whether c is a known client type
func (c ClientType) Valid() bool {
	return c == ClientFirstTime || c == ClientRepeat
}

// Membership is the maintenance plan tier the customer signs up for
type Membership string

const (
	MembershipNone   Membership = "none"
	Membership6Month Membership = "6-month"
	MembershipYear   Membership = "1-year"
)

// Valid reports whether m is a known membership tier
func (m Membership) Valid() bool {
	return m == MembershipNone || m == Membership6Month || m == MembershipYear
}

// AreaRug is a single rug priced by its own square footage.
// ID is unique within a job's rug list and is assigned by whoever adds the rug.
type AreaRug struct {
	ID   int64   `json:"id"`
	Sqft float64 `json:"sqft"`
}

// JobDetails describes the cleaning job being quoted
type JobDetails struct {
	Distance          float64    `json:"distance"`
	Sqft              float64    `json:"sqft"`
	PetTreatmentRooms int        `json:"petTreatmentRooms"`
	ClientType        ClientType `json:"clientType"`
	LargeItems        int        `json:"largeItems"`
	SmallItems        int        `json:"smallItems"`
	AreaRugs          []AreaRug  `json:"areaRugs"`
	Floors            int        `json:"floors"`
	Hours             float64    `json:"hours"`
	InitialDiscount   float64    `json:"initialDiscount"`
	PetStainSpots     int        `json:"petStainSpots"`
	StainGuardRooms   int        `json:"stainGuardRooms"`
	Membership        Membership `json:"membership"`
	Sofas             int        `json:"sofas"`
	LoveSeats         int        `json:"loveSeats"`
	Armchairs         int        `json:"armchairs"`
}

// DefaultJobDetails returns an empty job: zero quantities, a single floor,
// a first-time client and no membership
func DefaultJobDetails() JobDetails {
	return JobDetails{
		ClientType: ClientFirstTime,
		Membership: MembershipNone,
		Floors:     1,
		AreaRugs:   []AreaRug{},
	}
}

// Clone returns a copy that shares no slices with j
func (j JobDetails) Clone() JobDetails {
	out := j
	out.AreaRugs = make([]AreaRug, len(j.AreaRugs))
	copy(out.AreaRugs, j.AreaRugs)
	return out
}

// Validate rejects negative quantities and unknown enum values
func (j JobDetails) Validate() error {
	for _, f := range numericFields {
		v := f.get(&j)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number", f.name)
		}
		if v < 0 {
			return fmt.Errorf("%s must not be negative", f.name)
		}
	}
	if !j.ClientType.Valid() {
		return fmt.Errorf("clientType must be %q or %q", ClientFirstTime, ClientRepeat)
	}
	if !j.Membership.Valid() {
		return fmt.Errorf("membership must be %q, %q or %q", MembershipNone, Membership6Month, MembershipYear)
	}
	seen := make(map[int64]bool, len(j.AreaRugs))
	for i, rug := range j.AreaRugs {
		if rug.Sqft < 0 || math.IsNaN(rug.Sqft) || math.IsInf(rug.Sqft, 0) {
			return fmt.Errorf("area rug #%d sqft must not be negative", i+1)
		}
		if seen[rug.ID] {
			return fmt.Errorf("area rug id %d is duplicated", rug.ID)
		}
		seen[rug.ID] = true
	}
	return nil
}

type numericField struct {
	name string
	get  func(*JobDetails) float64
	set  func(*JobDetails, float64)
}

func roundCount(v float64) int {
	return int(math.Round(v))
}

// numericFields are the JobDetails fields a numeric follow-up may target
var numericFields = []numericField{
	{"distance", func(j *JobDetails) float64 { return j.Distance }, func(j *JobDetails, v float64) { j.Distance = v }},
	{"sqft", func(j *JobDetails) float64 { return j.Sqft }, func(j *JobDetails, v float64) { j.Sqft = v }},
	{"petTreatmentRooms", func(j *JobDetails) float64 { return float64(j.PetTreatmentRooms) }, func(j *JobDetails, v float64) { j.PetTreatmentRooms = roundCount(v) }},
	{"largeItems", func(j *JobDetails) float64 { return float64(j.LargeItems) }, func(j *JobDetails, v float64) { j.LargeItems = roundCount(v) }},
	{"smallItems", func(j *JobDetails) float64 { return float64(j.SmallItems) }, func(j *JobDetails, v float64) { j.SmallItems = roundCount(v) }},
	{"floors", func(j *JobDetails) float64 { return float64(j.Floors) }, func(j *JobDetails, v float64) { j.Floors = roundCount(v) }},
	{"hours", func(j *JobDetails) float64 { return j.Hours }, func(j *JobDetails, v float64) { j.Hours = v }},
	{"initialDiscount", func(j *JobDetails) float64 { return j.InitialDiscount }, func(j *JobDetails, v float64) { j.InitialDiscount = v }},
	{"petStainSpots", func(j *JobDetails) float64 { return float64(j.PetStainSpots) }, func(j *JobDetails, v float64) { j.PetStainSpots = roundCount(v) }},
	{"stainGuardRooms", func(j *JobDetails) float64 { return float64(j.StainGuardRooms) }, func(j *JobDetails, v float64) { j.StainGuardRooms = roundCount(v) }},
	{"sofas", func(j *JobDetails) float64 { return float64(j.Sofas) }, func(j *JobDetails, v float64) { j.Sofas = roundCount(v) }},
	{"loveSeats", func(j *JobDetails) float64 { return float64(j.LoveSeats) }, func(j *JobDetails, v float64) { j.LoveSeats = roundCount(v) }},
	{"armchairs", func(j *JobDetails) float64 { return float64(j.Armchairs) }, func(j *JobDetails, v float64) { j.Armchairs = roundCount(v) }},
}

func lookupNumericField(name string) (numericField, bool) {
	for _, f := range numericFields {
		if f.name == name {
			return f, true
		}
	}
	return numericField{}, false
}

// IsNumericField reports whether name is a JobDetails field that holds a number
func IsNumericField(name string) bool {
	_, ok := lookupNumericField(name)
	return ok
}

// NumericFieldNames lists the numeric JobDetails fields in form order
func NumericFieldNames() []string {
	names := make([]string, 0, len(numericFields))
	for _, f := range numericFields {
		names = append(names, f.name)
	}
	return names
}

// NumericField reads a numeric field by its json name
func (j JobDetails) NumericField(name string) (float64, bool) {
	f, ok := lookupNumericField(name)
	if !ok {
		return 0, false
	}
	return f.get(&j), true
}

// WithNumericField returns a copy of j with the named field overwritten.
// Count fields are rounded to the nearest whole number.
func (j JobDetails) WithNumericField(name string, value float64) (JobDetails, error) {
	f, ok := lookupNumericField(name)
	if !ok {
		return j, fmt.Errorf("unknown job detail field %q", name)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return j, fmt.Errorf("%s must be a finite number", name)
	}
	if value < 0 {
		return j, fmt.Errorf("%s must not be negative", name)
	}
	out := j.Clone()
	f.set(&out, value)
	return out, nil
}

// JobDetailsPatch carries any subset of JobDetails fields. It is what the
// description parser returns and what the job form submits.
type JobDetailsPatch struct {
	Distance          *float64    `json:"distance,omitempty"`
	Sqft              *float64    `json:"sqft,omitempty"`
	PetTreatmentRooms *int        `json:"petTreatmentRooms,omitempty"`
	ClientType        *ClientType `json:"clientType,omitempty"`
	LargeItems        *int        `json:"largeItems,omitempty"`
	SmallItems        *int        `json:"smallItems,omitempty"`
	AreaRugs          *[]AreaRug  `json:"areaRugs,omitempty"`
	Floors            *int        `json:"floors,omitempty"`
	Hours             *float64    `json:"hours,omitempty"`
	InitialDiscount   *float64    `json:"initialDiscount,omitempty"`
	PetStainSpots     *int        `json:"petStainSpots,omitempty"`
	StainGuardRooms   *int        `json:"stainGuardRooms,omitempty"`
	Membership        *Membership `json:"membership,omitempty"`
	Sofas             *int        `json:"sofas,omitempty"`
	LoveSeats         *int        `json:"loveSeats,omitempty"`
	Armchairs         *int        `json:"armchairs,omitempty"`
}

// Apply overlays the fields present in the patch onto j and returns the result.
// Unknown enum values in the patch are ignored and keep the current value.
func (p JobDetailsPatch) Apply(j JobDetails) JobDetails {
	out := j.Clone()
	setFloat := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}

	setFloat(&out.Distance, p.Distance)
	setFloat(&out.Sqft, p.Sqft)
	setInt(&out.PetTreatmentRooms, p.PetTreatmentRooms)
	setInt(&out.LargeItems, p.LargeItems)
	setInt(&out.SmallItems, p.SmallItems)
	setInt(&out.Floors, p.Floors)
	setFloat(&out.Hours, p.Hours)
	setFloat(&out.InitialDiscount, p.InitialDiscount)
	setInt(&out.PetStainSpots, p.PetStainSpots)
	setInt(&out.StainGuardRooms, p.StainGuardRooms)
	setInt(&out.Sofas, p.Sofas)
	setInt(&out.LoveSeats, p.LoveSeats)
	setInt(&out.Armchairs, p.Armchairs)

	if p.ClientType != nil && p.ClientType.Valid() {
		out.ClientType = *p.ClientType
	}
	if p.Membership != nil && p.Membership.Valid() {
		out.Membership = *p.Membership
	}
	if p.AreaRugs != nil {
		out.AreaRugs = make([]AreaRug, len(*p.AreaRugs))
		copy(out.AreaRugs, *p.AreaRugs)
	}
	return out
}
