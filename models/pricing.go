package models

import (
	"fmt"
	"math"
)

// Rate names as they appear in the "Pricing" sheet of a configuration workbook
const (
	RateBaseRate                 = "BASE_RATE"
	RateBaseSqft                 = "BASE_SQFT"
	RateAdditionalSqftRate       = "ADDITIONAL_SQFT_RATE"
	RateDistanceBaseMiles        = "DISTANCE_BASE_MILES"
	RateDistanceRatePerMile      = "DISTANCE_RATE_PER_MILE"
	RatePetTreatmentPerRoom      = "PET_TREATMENT_PER_ROOM"
	RateLargeItemMove            = "LARGE_ITEM_MOVE"
	RateSmallItemMove            = "SMALL_ITEM_MOVE"
	RateFloorSurcharge           = "FLOOR_SURCHARGE"
	RateStainSpot                = "STAIN_SPOT"
	RateStainGuardPerRoom        = "STAIN_GUARD_PER_ROOM"
	RateSofaCleaning             = "SOFA_CLEANING"
	RateLoveseatCleaning         = "LOVESEAT_CLEANING"
	RateArmchairCleaning         = "ARMCHAIR_CLEANING"
	RateAreaRugPerSqft           = "AREA_RUG_PER_SQFT"
	RateMembershipYearDiscount   = "MEMBERSHIP_YEAR_DISCOUNT"
	RateMembership6MonthDiscount = "MEMBERSHIP_6_MONTH_DISCOUNT"
)

// PricingCatalog holds the unit rates, base allowances and membership percentages
// used by the quote engine. Percentages are fractions (0.15 = 15%).
type PricingCatalog struct {
	BaseRate                 float64 `json:"BASE_RATE"`
	BaseSqft                 float64 `json:"BASE_SQFT"`
	AdditionalSqftRate       float64 `json:"ADDITIONAL_SQFT_RATE"`
	DistanceBaseMiles        float64 `json:"DISTANCE_BASE_MILES"`
	DistanceRatePerMile      float64 `json:"DISTANCE_RATE_PER_MILE"`
	PetTreatmentPerRoom      float64 `json:"PET_TREATMENT_PER_ROOM"`
	LargeItemMove            float64 `json:"LARGE_ITEM_MOVE"`
	SmallItemMove            float64 `json:"SMALL_ITEM_MOVE"`
	FloorSurcharge           float64 `json:"FLOOR_SURCHARGE"`
	StainSpot                float64 `json:"STAIN_SPOT"`
	StainGuardPerRoom        float64 `json:"STAIN_GUARD_PER_ROOM"`
	SofaCleaning             float64 `json:"SOFA_CLEANING"`
	LoveseatCleaning         float64 `json:"LOVESEAT_CLEANING"`
	ArmchairCleaning         float64 `json:"ARMCHAIR_CLEANING"`
	AreaRugPerSqft           float64 `json:"AREA_RUG_PER_SQFT"`
	MembershipYearDiscount   float64 `json:"MEMBERSHIP_YEAR_DISCOUNT"`
	Membership6MonthDiscount float64 `json:"MEMBERSHIP_6_MONTH_DISCOUNT"`
}

type rateField struct {
	name    string
	percent bool
	ref     func(*PricingCatalog) *float64
}

// rateFields is ordered the way rates are listed in exported workbooks
var rateFields = []rateField{
	{RateBaseRate, false, func(p *PricingCatalog) *float64 { return &p.BaseRate }},
	{RateBaseSqft, false, func(p *PricingCatalog) *float64 { return &p.BaseSqft }},
	{RateAdditionalSqftRate, false, func(p *PricingCatalog) *float64 { return &p.AdditionalSqftRate }},
	{RateDistanceBaseMiles, false, func(p *PricingCatalog) *float64 { return &p.DistanceBaseMiles }},
	{RateDistanceRatePerMile, false, func(p *PricingCatalog) *float64 { return &p.DistanceRatePerMile }},
	{RatePetTreatmentPerRoom, false, func(p *PricingCatalog) *float64 { return &p.PetTreatmentPerRoom }},
	{RateLargeItemMove, false, func(p *PricingCatalog) *float64 { return &p.LargeItemMove }},
	{RateSmallItemMove, false, func(p *PricingCatalog) *float64 { return &p.SmallItemMove }},
	{RateFloorSurcharge, false, func(p *PricingCatalog) *float64 { return &p.FloorSurcharge }},
	{RateStainSpot, false, func(p *PricingCatalog) *float64 { return &p.StainSpot }},
	{RateStainGuardPerRoom, false, func(p *PricingCatalog) *float64 { return &p.StainGuardPerRoom }},
	{RateSofaCleaning, false, func(p *PricingCatalog) *float64 { return &p.SofaCleaning }},
	{RateLoveseatCleaning, false, func(p *PricingCatalog) *float64 { return &p.LoveseatCleaning }},
	{RateArmchairCleaning, false, func(p *PricingCatalog) *float64 { return &p.ArmchairCleaning }},
	{RateAreaRugPerSqft, false, func(p *PricingCatalog) *float64 { return &p.AreaRugPerSqft }},
	{RateMembershipYearDiscount, true, func(p *PricingCatalog) *float64 { return &p.MembershipYearDiscount }},
	{RateMembership6MonthDiscount, true, func(p *PricingCatalog) *float64 { return &p.Membership6MonthDiscount }},
}

func lookupRate(name string) (rateField, bool) {
	for _, f := range rateFields {
		if f.name == name {
			return f, true
		}
	}
	return rateField{}, false
}

// DefaultPricingCatalog returns the built-in rate table used until a workbook is imported
func DefaultPricingCatalog() PricingCatalog {
	return PricingCatalog{
		BaseRate:                 199,
		BaseSqft:                 500,
		AdditionalSqftRate:       0.35,
		DistanceBaseMiles:        20,
		DistanceRatePerMile:      1.5,
		PetTreatmentPerRoom:      25,
		LargeItemMove:            15,
		SmallItemMove:            5,
		FloorSurcharge:           20,
		StainSpot:                10,
		StainGuardPerRoom:        30,
		SofaCleaning:             120,
		LoveseatCleaning:         90,
		ArmchairCleaning:         60,
		AreaRugPerSqft:           2,
		MembershipYearDiscount:   0.15,
		Membership6MonthDiscount: 0.10,
	}
}

// RateNames lists every rate name the catalog understands
func RateNames() []string {
	names := make([]string, 0, len(rateFields))
	for _, f := range rateFields {
		names = append(names, f.name)
	}
	return names
}

// Names lists the catalog's rate names in workbook order
func (p PricingCatalog) Names() []string {
	return RateNames()
}

// IsPercentageRate reports whether the named rate is a fraction in [0,1]
func IsPercentageRate(name string) bool {
	f, ok := lookupRate(name)
	return ok && f.percent
}

// Get returns the value of a rate by name
func (p PricingCatalog) Get(name string) (float64, bool) {
	f, ok := lookupRate(name)
	if !ok {
		return 0, false
	}
	return *f.ref(&p), true
}

// With returns a copy of the catalog with the named rate replaced.
// The second return value is false when the name is unknown.
func (p PricingCatalog) With(name string, value float64) (PricingCatalog, bool) {
	f, ok := lookupRate(name)
	if !ok {
		return p, false
	}
	*f.ref(&p) = value
	return p, true
}

// Validate checks that all rates are finite and non-negative and that
// percentage rates are fractions in [0,1]
func (p PricingCatalog) Validate() error {
	for _, f := range rateFields {
		v := *f.ref(&p)
		if err := ValidateRate(f.name, v); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRate checks a single rate value against the catalog invariants
func ValidateRate(name string, value float64) error {
	f, ok := lookupRate(name)
	if !ok {
		return fmt.Errorf("unknown rate %q", name)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("rate %s must be a finite number", name)
	}
	if value < 0 {
		return fmt.Errorf("rate %s must not be negative, got %v", name, value)
	}
	if f.percent && value > 1 {
		return fmt.Errorf("rate %s must be a fraction between 0 and 1, got %v", name, value)
	}
	return nil
}
