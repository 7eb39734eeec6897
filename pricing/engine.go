package pricing

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"quick-quote/models"
	"quick-quote/utils"
)

// Engine computes itemized quotes under a discount policy.
// It holds no per-quote state and is safe for concurrent use.
type Engine struct {
	policy DiscountPolicy
}

// NewEngine creates a pricing engine for the given discount policy
func NewEngine(policy DiscountPolicy) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid discount policy: %w", err)
	}
	return &Engine{policy: policy}, nil
}

// DefaultEngine returns an engine using DefaultDiscountPolicy
func DefaultEngine() *Engine {
	return &Engine{policy: DefaultDiscountPolicy()}
}

// ComputeQuote prices a job with the default discount policy
func ComputeQuote(job models.JobDetails, responses []models.DealResponse, catalog models.PricingCatalog, deals []models.Deal) models.QuoteResult {
	return DefaultEngine().ComputeQuote(job, responses, catalog, deals)
}

// charge is a candidate breakdown line
type charge struct {
	include  bool
	quantity float64
	rate     float64
	item     string
}

// ComputeQuote prices a job. Every line cost and saving is rounded to cents;
// the subtotal is the sum of rounded lines and the final total never goes below zero.
func (e *Engine) ComputeQuote(job models.JobDetails, responses []models.DealResponse, catalog models.PricingCatalog, deals []models.Deal) models.QuoteResult {
	result := models.QuoteResult{
		Breakdown:       []models.LineItem{},
		DiscountSummary: []models.DiscountLine{},
	}

	subtotal := decimal.Zero
	addLine := func(item string, cost decimal.Decimal) {
		subtotal = subtotal.Add(cost)
		result.Breakdown = append(result.Breakdown, models.LineItem{Item: item, Cost: toFloat(cost)})
	}

	// Base carpet cleaning and overage
	if job.Sqft > 0 {
		addLine(fmt.Sprintf("Carpet Cleaning (up to %s sq ft)", num(catalog.BaseSqft)), cents(catalog.BaseRate))
		if job.Sqft > catalog.BaseSqft {
			extra := decimal.NewFromFloat(job.Sqft).Sub(decimal.NewFromFloat(catalog.BaseSqft))
			addLine(fmt.Sprintf("Additional %s sq ft", extra.String()), extra.Mul(decimal.NewFromFloat(catalog.AdditionalSqftRate)).Round(2))
		}
	}

	// Unit-rate services in display order
	for _, c := range serviceCharges(job, catalog) {
		if c.include {
			addLine(c.item, multiply(c.quantity, c.rate))
		}
	}

	// Rugs are priced on their own, even when no carpet is cleaned
	for i, rug := range job.AreaRugs {
		addLine(fmt.Sprintf("Area Rug #%d (%s sq ft)", i+1, num(rug.Sqft)), multiply(rug.Sqft, catalog.AreaRugPerSqft))
	}

	totalDiscount := cents(job.InitialDiscount)
	addSaving := func(item string, saving decimal.Decimal) {
		totalDiscount = totalDiscount.Add(saving)
		result.DiscountSummary = append(result.DiscountSummary, models.DiscountLine{Item: item, Saving: toFloat(saving)})
	}
	if job.InitialDiscount > 0 {
		result.DiscountSummary = append(result.DiscountSummary, models.DiscountLine{Item: "Initial Discount", Saving: toFloat(totalDiscount)})
	}

	switch job.Membership {
	case models.MembershipYear:
		addSaving(fmt.Sprintf("1-Year Membership Discount (%s)", utils.FormatPercent(catalog.MembershipYearDiscount)),
			percentOf(subtotal, catalog.MembershipYearDiscount))
	case models.Membership6Month:
		addSaving(fmt.Sprintf("6-Month Membership Discount (%s)", utils.FormatPercent(catalog.Membership6MonthDiscount)),
			percentOf(subtotal, catalog.Membership6MonthDiscount))
	}

	accepted := acceptedDeals(responses, deals)
	if id, ok := e.firstExclusive(accepted); ok {
		rule := e.policy.Rules[id]
		addSaving(rule.Label, e.saving(rule, subtotal))
	} else {
		for _, id := range accepted {
			rule, ok := e.policy.Rules[id]
			if !ok || !rule.applies(job) {
				continue
			}
			addSaving(rule.Label, e.saving(rule, subtotal))
		}
	}

	result.Subtotal = toFloat(subtotal)
	result.TotalDiscount = toFloat(totalDiscount)
	result.FinalTotal = toFloat(decimal.Max(decimal.Zero, subtotal.Sub(totalDiscount)))
	return result
}

func serviceCharges(j models.JobDetails, p models.PricingCatalog) []charge {
	return []charge{
		{j.Distance > p.DistanceBaseMiles, j.Distance - p.DistanceBaseMiles, p.DistanceRatePerMile,
			fmt.Sprintf("Distance Surcharge (%s miles)", num(j.Distance))},
		{j.PetTreatmentRooms > 0, float64(j.PetTreatmentRooms), p.PetTreatmentPerRoom,
			fmt.Sprintf("Pet Treatment (%d rooms)", j.PetTreatmentRooms)},
		{j.LargeItems > 0, float64(j.LargeItems), p.LargeItemMove,
			fmt.Sprintf("Large Items Moved (%d)", j.LargeItems)},
		{j.SmallItems > 0, float64(j.SmallItems), p.SmallItemMove,
			fmt.Sprintf("Small/Medium Items Moved (%d)", j.SmallItems)},
		{j.Floors > 1, float64(j.Floors - 1), p.FloorSurcharge,
			fmt.Sprintf("Multi-floor Surcharge (%d floors)", j.Floors)},
		{j.PetStainSpots > 0, float64(j.PetStainSpots), p.StainSpot,
			fmt.Sprintf("Pet Stain Spots (%d)", j.PetStainSpots)},
		{j.StainGuardRooms > 0, float64(j.StainGuardRooms), p.StainGuardPerRoom,
			fmt.Sprintf("Stain-Guard (%d rooms)", j.StainGuardRooms)},
		{j.Sofas > 0, float64(j.Sofas), p.SofaCleaning,
			fmt.Sprintf("Sofa Cleaning (%d)", j.Sofas)},
		{j.LoveSeats > 0, float64(j.LoveSeats), p.LoveseatCleaning,
			fmt.Sprintf("Loveseat Cleaning (%d)", j.LoveSeats)},
		{j.Armchairs > 0, float64(j.Armchairs), p.ArmchairCleaning,
			fmt.Sprintf("Armchair Cleaning (%d)", j.Armchairs)},
	}
}

// acceptedDeals returns the ids of accepted responses that exist in the deal
// catalog, in response order, each at most once
func acceptedDeals(responses []models.DealResponse, deals []models.Deal) []string {
	known := make(map[string]bool, len(deals))
	for _, d := range deals {
		known[d.ID] = true
	}
	seen := make(map[string]bool, len(responses))
	var ids []string
	for _, r := range responses {
		if !r.Accepted || !known[r.ID] || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		ids = append(ids, r.ID)
	}
	return ids
}

func (e *Engine) firstExclusive(accepted []string) (string, bool) {
	set := make(map[string]bool, len(accepted))
	for _, id := range accepted {
		set[id] = true
	}
	for _, id := range e.policy.Exclusive {
		if set[id] {
			return id, true
		}
	}
	return "", false
}

func (e *Engine) saving(rule DiscountRule, subtotal decimal.Decimal) decimal.Decimal {
	if rule.Kind == RuleFlat {
		return cents(rule.Amount)
	}
	return percentOf(subtotal, rule.Amount)
}

func cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func multiply(quantity, rate float64) decimal.Decimal {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(rate)).Round(2)
}

func percentOf(amount decimal.Decimal, fraction float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(fraction)).Round(2)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// num renders a quantity the way it is shown on the quote: 500, 12.5
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
