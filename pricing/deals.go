package pricing

import "quick-quote/models"

// DefaultDeals returns the built-in deal catalog, offered in this order
func DefaultDeals() []models.Deal {
	return []models.Deal{
		{
			ID:               DealCarpetRugsStainGuard,
			Title:            "Carpet + Rugs + Stain Guard Bundle",
			Description:      "Clean your carpet and area rugs and protect them with Stain-Guard to save 10% on the whole job.",
			RequiresFollowUp: models.FollowUpWhen(models.ConditionNoStainGuard),
			FollowUpQuestion: "How many rooms should receive Stain-Guard?",
			FollowUpType:     models.FollowUpNumber,
			FollowUpTarget:   "stainGuardRooms",
		},
		{
			ID:               DealUltimateClean,
			Title:            "Ultimate Clean Package",
			Description:      "Deep clean, pet treatment, Stain-Guard and upholstery in one visit. Save 25% on everything.",
			RequiresFollowUp: models.NeverFollowUp(),
		},
		{
			ID:               DealPetUpholstery,
			Title:            "Pet & Upholstery Bundle",
			Description:      "Add pet odor treatment and upholstery cleaning and take $55.55 off.",
			RequiresFollowUp: models.FollowUpWhen(models.ConditionNoUpholstery),
			FollowUpQuestion: "How many pieces of upholstery should we clean?",
			FollowUpType:     models.FollowUpUpholstery,
		},
		{
			ID:               DealPremiumProtection,
			Title:            "Premium Protection Bundle",
			Description:      "Pet treatment plus Stain-Guard for every cleaned room. Save 15% on the job.",
			RequiresFollowUp: models.FollowUpWhen(models.ConditionNoPetTreatment),
			FollowUpQuestion: "How many rooms need pet treatment?",
			FollowUpType:     models.FollowUpNumber,
			FollowUpTarget:   "petTreatmentRooms",
		},
		{
			ID:               DealSocialMedia,
			Title:            "Social Media Share",
			Description:      "Share your before and after photos and get $10 off today.",
			RequiresFollowUp: models.AlwaysFollowUp(),
			FollowUpQuestion: "Which platform will you share on?",
			FollowUpType:     models.FollowUpText,
		},
		{
			ID:               DealReferral,
			Title:            "Referral Program",
			Description:      "Refer a friend and both of you save on your next cleaning.",
			RequiresFollowUp: models.AlwaysFollowUp(),
			FollowUpQuestion: "Who would you like to refer?",
			FollowUpType:     models.FollowUpText,
		},
	}
}

// DefaultTips returns the built-in tip list, which is empty
func DefaultTips() []models.Tip {
	return []models.Tip{}
}
