package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quick-quote/models"
)

func accept(responses []models.DealResponse, ids ...string) []models.DealResponse {
	out := make([]models.DealResponse, len(responses))
	copy(out, responses)
	for i := range out {
		for _, id := range ids {
			if out[i].ID == id {
				out[i].Accepted = true
			}
		}
	}
	return out
}

func items(lines []models.LineItem) []string {
	var out []string
	for _, l := range lines {
		out = append(out, l.Item)
	}
	return out
}

func savings(lines []models.DiscountLine) []string {
	var out []string
	for _, l := range lines {
		out = append(out, l.Item)
	}
	return out
}

func quote(job models.JobDetails, accepted ...string) models.QuoteResult {
	deals := DefaultDeals()
	responses := accept(models.NewDealResponses(deals), accepted...)
	return ComputeQuote(job, responses, models.DefaultPricingCatalog(), deals)
}

func TestComputeQuote_ZeroBaseline(t *testing.T) {
	q := quote(models.DefaultJobDetails())

	assert.Equal(t, 0.0, q.Subtotal)
	assert.Equal(t, 0.0, q.TotalDiscount)
	assert.Equal(t, 0.0, q.FinalTotal)
	assert.Empty(t, q.Breakdown)
	assert.Empty(t, q.DiscountSummary)
}

func TestComputeQuote_ZeroBaselineWithInitialDiscount(t *testing.T) {
	job := models.DefaultJobDetails()
	job.InitialDiscount = 25

	q := quote(job)

	assert.Equal(t, 0.0, q.Subtotal)
	assert.Equal(t, 25.0, q.TotalDiscount)
	assert.Equal(t, 0.0, q.FinalTotal)
	assert.Empty(t, q.Breakdown)
	require.Len(t, q.DiscountSummary, 1)
	assert.Equal(t, models.DiscountLine{Item: "Initial Discount", Saving: 25}, q.DiscountSummary[0])
}

func TestComputeQuote_BaseTiering(t *testing.T) {
	job := models.DefaultJobDetails()
	job.Sqft = 500

	q := quote(job)
	require.Len(t, q.Breakdown, 1)
	assert.Equal(t, models.LineItem{Item: "Carpet Cleaning (up to 500 sq ft)", Cost: 199}, q.Breakdown[0])
	assert.Equal(t, 199.0, q.Subtotal)

	job.Sqft = 600
	q = quote(job)
	require.Len(t, q.Breakdown, 2)
	assert.Equal(t, "Additional 100 sq ft", q.Breakdown[1].Item)
	assert.InDelta(t, 35.0, q.Breakdown[1].Cost, 0.001)
	assert.InDelta(t, 234.0, q.Subtotal, 0.001)
}

func TestComputeQuote_ServiceLineOrder(t *testing.T) {
	job := models.DefaultJobDetails()
	job.Distance = 30
	job.PetTreatmentRooms = 2
	job.LargeItems = 1
	job.SmallItems = 3
	job.Floors = 3
	job.PetStainSpots = 2
	job.StainGuardRooms = 1
	job.Sofas = 1
	job.LoveSeats = 1
	job.Armchairs = 2

	q := quote(job)

	assert.Equal(t, []models.LineItem{
		{Item: "Distance Surcharge (30 miles)", Cost: 15},
		{Item: "Pet Treatment (2 rooms)", Cost: 50},
		{Item: "Large Items Moved (1)", Cost: 15},
		{Item: "Small/Medium Items Moved (3)", Cost: 15},
		{Item: "Multi-floor Surcharge (3 floors)", Cost: 40},
		{Item: "Pet Stain Spots (2)", Cost: 20},
		{Item: "Stain-Guard (1 rooms)", Cost: 30},
		{Item: "Sofa Cleaning (1)", Cost: 120},
		{Item: "Loveseat Cleaning (1)", Cost: 90},
		{Item: "Armchair Cleaning (2)", Cost: 120},
	}, q.Breakdown)
	assert.InDelta(t, 515.0, q.Subtotal, 0.001)
}

func TestComputeQuote_DistanceAtBaseHasNoSurcharge(t *testing.T) {
	job := models.DefaultJobDetails()
	job.Distance = 20

	q := quote(job)
	assert.Empty(t, q.Breakdown)
}

func TestComputeQuote_RugIndependence(t *testing.T) {
	job := models.DefaultJobDetails()
	job.AreaRugs = []models.AreaRug{{ID: 1, Sqft: 10}, {ID: 2, Sqft: 20}}

	q := quote(job)

	assert.Equal(t, []string{"Area Rug #1 (10 sq ft)", "Area Rug #2 (20 sq ft)"}, items(q.Breakdown))
	assert.InDelta(t, 60.0, q.Subtotal, 0.001)
	assert.InDelta(t, 60.0, q.FinalTotal, 0.001)
}

func TestComputeQuote_ZeroSqftRugIsStillListed(t *testing.T) {
	job := models.DefaultJobDetails()
	job.AreaRugs = []models.AreaRug{{ID: 7, Sqft: 0}}

	q := quote(job)
	require.Len(t, q.Breakdown, 1)
	assert.Equal(t, models.LineItem{Item: "Area Rug #1 (0 sq ft)", Cost: 0}, q.Breakdown[0])
}

func TestComputeQuote_MembershipExclusivity(t *testing.T) {
	job := models.DefaultJobDetails()
	job.Sqft = 600

	job.Membership = models.Membership6Month
	q := quote(job)
	require.Len(t, q.DiscountSummary, 1)
	assert.Equal(t, "6-Month Membership Discount (10%)", q.DiscountSummary[0].Item)
	assert.InDelta(t, 23.4, q.DiscountSummary[0].Saving, 0.001)

	job.Membership = models.MembershipYear
	q = quote(job)
	require.Len(t, q.DiscountSummary, 1)
	assert.Equal(t, "1-Year Membership Discount (15%)", q.DiscountSummary[0].Item)
	assert.InDelta(t, 35.1, q.DiscountSummary[0].Saving, 0.001)
	assert.InDelta(t, 198.9, q.FinalTotal, 0.001)
}

func TestComputeQuote_ExclusivityPrecedence(t *testing.T) {
	job := models.DefaultJobDetails()
	job.Sqft = 500
	job.StainGuardRooms = 1

	both := quote(job, DealUltimateClean, DealPremiumProtection)
	require.Len(t, both.DiscountSummary, 1)
	assert.Equal(t, "Ultimate Clean Package (25%)", both.DiscountSummary[0].Item)
	assert.InDelta(t, 57.25, both.DiscountSummary[0].Saving, 0.001)
	assert.InDelta(t, 171.75, both.FinalTotal, 0.001)

	only15 := quote(job, DealPremiumProtection)
	require.Len(t, only15.DiscountSummary, 1)
	assert.Equal(t, "Premium Protection Bundle (15%)", only15.DiscountSummary[0].Item)
	assert.InDelta(t, 34.35, only15.DiscountSummary[0].Saving, 0.001)
}

func TestComputeQuote_AdditiveSuppression(t *testing.T) {
	job := models.DefaultJobDetails()
	job.Sqft = 500
	job.StainGuardRooms = 1
	job.AreaRugs = []models.AreaRug{{ID: 1, Sqft: 10}}

	q := quote(job, DealCarpetRugsStainGuard, DealPetUpholstery, DealSocialMedia, DealPremiumProtection)

	assert.InDelta(t, 249.0, q.Subtotal, 0.001)
	assert.Equal(t, []string{"Premium Protection Bundle (15%)"}, savings(q.DiscountSummary))
	assert.InDelta(t, 37.35, q.TotalDiscount, 0.001)
}

func TestComputeQuote_AdditiveDeals(t *testing.T) {
	job := models.DefaultJobDetails()
	job.Sqft = 500
	job.StainGuardRooms = 1
	job.AreaRugs = []models.AreaRug{{ID: 1, Sqft: 10}}

	q := quote(job, DealCarpetRugsStainGuard, DealPetUpholstery, DealSocialMedia, DealReferral)

	assert.Equal(t, []models.DiscountLine{
		{Item: "Carpet + Rugs + Stain Guard Bundle (10%)", Saving: 24.9},
		{Item: "Pet & Upholstery Bundle", Saving: 55.55},
		{Item: "Social Media Share", Saving: 10},
	}, q.DiscountSummary)
	assert.InDelta(t, 90.45, q.TotalDiscount, 0.001)
	assert.InDelta(t, 158.55, q.FinalTotal, 0.001)
}

func TestComputeQuote_ConditionalBundleNeedsAllParts(t *testing.T) {
	job := models.DefaultJobDetails()
	job.Sqft = 500
	job.StainGuardRooms = 1

	q := quote(job, DealCarpetRugsStainGuard)
	assert.Empty(t, q.DiscountSummary)
	assert.InDelta(t, q.Subtotal, q.FinalTotal, 0.001)
}

func TestComputeQuote_NonNegativeTotal(t *testing.T) {
	job := models.DefaultJobDetails()
	job.Sqft = 100
	job.InitialDiscount = 500
	job.Membership = models.MembershipYear

	q := quote(job, DealUltimateClean)

	assert.Greater(t, q.TotalDiscount, q.Subtotal)
	assert.Equal(t, 0.0, q.FinalTotal)
}

func TestComputeQuote_RoundsEachLineToCents(t *testing.T) {
	job := models.DefaultJobDetails()
	job.Sqft = 503
	job.Membership = models.MembershipYear

	q := quote(job)

	assert.InDelta(t, 1.05, q.Breakdown[1].Cost, 1e-9)
	assert.InDelta(t, 200.05, q.Subtotal, 1e-9)
	// 200.05 * 0.15 = 30.0075
	assert.InDelta(t, 30.01, q.DiscountSummary[0].Saving, 1e-9)
	assert.InDelta(t, 170.04, q.FinalTotal, 1e-9)
}

func TestComputeQuote_UnknownAcceptedDealContributesNothing(t *testing.T) {
	job := models.DefaultJobDetails()
	job.Sqft = 500
	deals := []models.Deal{{ID: DealSocialMedia, Title: "Social Media Share"}}
	responses := []models.DealResponse{
		{ID: DealUltimateClean, Accepted: true},
		{ID: DealSocialMedia, Accepted: true},
	}

	q := ComputeQuote(job, responses, models.DefaultPricingCatalog(), deals)

	assert.Equal(t, []string{"Social Media Share"}, savings(q.DiscountSummary))
}

func TestComputeQuote_DuplicateResponsesApplyOnce(t *testing.T) {
	job := models.DefaultJobDetails()
	job.Sqft = 500
	responses := []models.DealResponse{
		{ID: DealSocialMedia, Accepted: true},
		{ID: DealSocialMedia, Accepted: true},
	}

	q := ComputeQuote(job, responses, models.DefaultPricingCatalog(), DefaultDeals())
	assert.Len(t, q.DiscountSummary, 1)
	assert.InDelta(t, 10.0, q.TotalDiscount, 0.001)
}

func TestComputeQuote_CustomCatalog(t *testing.T) {
	catalog, ok := models.DefaultPricingCatalog().With(models.RateMembershipYearDiscount, 0.2)
	require.True(t, ok)
	job := models.DefaultJobDetails()
	job.Sqft = 500
	job.Membership = models.MembershipYear

	q := ComputeQuote(job, nil, catalog, DefaultDeals())

	require.Len(t, q.DiscountSummary, 1)
	assert.Equal(t, "1-Year Membership Discount (20%)", q.DiscountSummary[0].Item)
	assert.InDelta(t, 39.8, q.DiscountSummary[0].Saving, 0.001)
}

func TestComputeQuote_Deterministic(t *testing.T) {
	job := models.DefaultJobDetails()
	job.Sqft = 750
	job.AreaRugs = []models.AreaRug{{ID: 1, Sqft: 12.5}}
	job.StainGuardRooms = 2
	job.Membership = models.Membership6Month

	first := quote(job, DealCarpetRugsStainGuard, DealSocialMedia)
	second := quote(job, DealCarpetRugsStainGuard, DealSocialMedia)
	assert.Equal(t, first, second)
}

func TestEngine_CustomPolicy(t *testing.T) {
	policy := DiscountPolicy{
		Rules: map[string]DiscountRule{
			"spring": Percentage("Spring Special (20%)", 0.2),
			"coupon": Flat("Coupon", 5),
		},
		Exclusive: []string{"spring"},
	}
	engine, err := NewEngine(policy)
	require.NoError(t, err)

	deals := []models.Deal{{ID: "coupon"}, {ID: "spring"}}
	job := models.DefaultJobDetails()
	job.Sqft = 500

	q := engine.ComputeQuote(job, accept(models.NewDealResponses(deals), "coupon"), models.DefaultPricingCatalog(), deals)
	assert.Equal(t, []string{"Coupon"}, savings(q.DiscountSummary))

	q = engine.ComputeQuote(job, accept(models.NewDealResponses(deals), "coupon", "spring"), models.DefaultPricingCatalog(), deals)
	assert.Equal(t, []string{"Spring Special (20%)"}, savings(q.DiscountSummary))
	assert.InDelta(t, 39.8, q.TotalDiscount, 0.001)
}

func TestNewEngine_RejectsInvalidPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy DiscountPolicy
	}{
		{"exclusive without rule", DiscountPolicy{Exclusive: []string{"ghost"}}},
		{"percentage above one", DiscountPolicy{Rules: map[string]DiscountRule{"x": Percentage("X", 1.5)}}},
		{"conditional without predicate", DiscountPolicy{Rules: map[string]DiscountRule{"x": ConditionalPercentage("X", 0.1, nil)}}},
		{"negative flat", DiscountPolicy{Rules: map[string]DiscountRule{"x": Flat("X", -1)}}},
		{"missing label", DiscountPolicy{Rules: map[string]DiscountRule{"x": Flat("", 1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.policy)
			assert.Error(t, err)
		})
	}
	assert.NoError(t, DefaultDiscountPolicy().Validate())
}

func TestBuildNotes(t *testing.T) {
	deals := DefaultDeals()
	responses := []models.DealResponse{
		{ID: DealSocialMedia, Accepted: true, Details: models.TextDetails("Instagram")},
		{ID: DealReferral, Accepted: false, Details: models.TextDetails("Jamie")},
		{ID: DealCarpetRugsStainGuard, Accepted: true, Details: models.NumberDetails(3)},
		{ID: DealUltimateClean, Accepted: true},
		{ID: "retired_deal", Accepted: true, Details: models.TextDetails("kept")},
	}

	notes := BuildNotes(responses, deals)

	assert.Equal(t, []models.Note{
		{Title: "Social Media Share", Detail: "Instagram"},
		{Title: "Carpet + Rugs + Stain Guard Bundle", Detail: "3"},
		{Title: "Note", Detail: "kept"},
	}, notes)
}

func TestBuildDocument(t *testing.T) {
	deals := DefaultDeals()
	job := models.DefaultJobDetails()
	job.Sqft = 500
	responses := accept(models.NewDealResponses(deals), DealSocialMedia)
	responses[4].Details = models.TextDetails("Facebook")
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	doc := BuildDocument(DocumentInput{
		BusinessName: "Clean Carpets Inc.",
		Job:          job,
		Responses:    responses,
		Catalog:      models.DefaultPricingCatalog(),
		Deals:        deals,
		Tips:         []models.Tip{{Title: "Dry time", Description: "Allow 6 hours."}},
		GeneratedAt:  at,
	})

	assert.Equal(t, "Clean Carpets Inc.", doc.BusinessName)
	assert.Equal(t, at, doc.GeneratedAt)
	assert.InDelta(t, 189.0, doc.Result.FinalTotal, 0.001)
	require.Len(t, doc.Upsells, len(deals))
	assert.Equal(t, DealSocialMedia, doc.Upsells[4].ID)
	assert.True(t, doc.Upsells[4].Accepted)
	assert.Equal(t, "Facebook", doc.Upsells[4].Details)
	assert.False(t, doc.Upsells[0].Accepted)
	assert.Len(t, doc.Notes, 1)
	assert.Len(t, doc.Tips, 1)
}

func TestDefaultDeals_HaveUniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range DefaultDeals() {
		assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
		if d.FollowUpType == models.FollowUpNumber {
			assert.True(t, models.IsNumericField(d.FollowUpTarget), "deal %s targets %q", d.ID, d.FollowUpTarget)
		}
	}
	assert.Len(t, seen, 6)
}
