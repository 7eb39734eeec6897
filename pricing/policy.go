package pricing

import (
	"fmt"

	"quick-quote/models"
)

// Deal ids the default discount policy recognizes
const (
	DealCarpetRugsStainGuard = "bundle1"
	DealUltimateClean        = "bundle2"
	DealPetUpholstery        = "bundle3"
	DealPremiumProtection    = "bundle4"
	DealSocialMedia          = "social_media"
	DealReferral             = "referral"
)

// RuleKind is how a discount rule turns an accepted deal into a saving
type RuleKind string

const (
	RuleFlat                  RuleKind = "flat"
	RulePercentage            RuleKind = "percentage"
	RuleConditionalPercentage RuleKind = "conditional_percentage"
)

// DiscountRule is the saving an accepted deal grants.
// Amount is dollars for flat rules and a fraction of the subtotal otherwise.
type DiscountRule struct {
	Kind   RuleKind
	Label  string
	Amount float64
	// When gates a conditional percentage rule on the job being quoted
	When func(models.JobDetails) bool
}

// Flat grants a fixed dollar saving once accepted
func Flat(label string, amount float64) DiscountRule {
	return DiscountRule{Kind: RuleFlat, Label: label, Amount: amount}
}

// Percentage grants a fraction of the subtotal once accepted
func Percentage(label string, fraction float64) DiscountRule {
	return DiscountRule{Kind: RulePercentage, Label: label, Amount: fraction}
}

// ConditionalPercentage grants a fraction of the subtotal only while when(job) holds
func ConditionalPercentage(label string, fraction float64, when func(models.JobDetails) bool) DiscountRule {
	return DiscountRule{Kind: RuleConditionalPercentage, Label: label, Amount: fraction, When: when}
}

func (r DiscountRule) applies(job models.JobDetails) bool {
	if r.Kind == RuleConditionalPercentage {
		return r.When(job)
	}
	return true
}

// DiscountPolicy maps deal ids to discount rules.
//
// Exclusive lists deal ids in precedence order. When any of them is accepted
// only the first accepted one applies and every additive rule is skipped.
// Accepted deals without a rule are recorded but save nothing.
type DiscountPolicy struct {
	Rules     map[string]DiscountRule
	Exclusive []string
}

// DefaultDiscountPolicy is the policy for the built-in deal catalog
func DefaultDiscountPolicy() DiscountPolicy {
	return DiscountPolicy{
		Rules: map[string]DiscountRule{
			DealUltimateClean:     Percentage("Ultimate Clean Package (25%)", 0.25),
			DealPremiumProtection: Percentage("Premium Protection Bundle (15%)", 0.15),
			DealCarpetRugsStainGuard: ConditionalPercentage("Carpet + Rugs + Stain Guard Bundle (10%)", 0.10,
				func(j models.JobDetails) bool {
					return j.Sqft > 0 && len(j.AreaRugs) > 0 && j.StainGuardRooms > 0
				}),
			DealSocialMedia:   Flat("Social Media Share", 10),
			DealPetUpholstery: Flat("Pet & Upholstery Bundle", 55.55),
		},
		Exclusive: []string{DealUltimateClean, DealPremiumProtection},
	}
}

// Validate checks that every rule is well formed and that each exclusive id has a rule
func (p DiscountPolicy) Validate() error {
	for id, rule := range p.Rules {
		if rule.Label == "" {
			return fmt.Errorf("discount rule %q has no label", id)
		}
		if rule.Amount < 0 {
			return fmt.Errorf("discount rule %q must not be negative", id)
		}
		switch rule.Kind {
		case RuleFlat:
		case RulePercentage, RuleConditionalPercentage:
			if rule.Amount > 1 {
				return fmt.Errorf("discount rule %q must be a fraction between 0 and 1", id)
			}
			if rule.Kind == RuleConditionalPercentage && rule.When == nil {
				return fmt.Errorf("discount rule %q has no condition", id)
			}
		default:
			return fmt.Errorf("discount rule %q has unknown kind %q", id, rule.Kind)
		}
	}
	seen := make(map[string]bool, len(p.Exclusive))
	for _, id := range p.Exclusive {
		if _, ok := p.Rules[id]; !ok {
			return fmt.Errorf("exclusive deal %q has no discount rule", id)
		}
		if seen[id] {
			return fmt.Errorf("exclusive deal %q is listed twice", id)
		}
		seen[id] = true
	}
	return nil
}
