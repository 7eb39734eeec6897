package models

// EffectiveConfig is the pricing, deal and tip configuration a session quotes
// against, plus any per-field problems met while importing it.
// Example JSON:
//
//	{
//	  "pricing": {"BASE_RATE": 199, "BASE_SQFT": 500, ...},
//	  "deals": [{"id": "bundle1", "title": "Carpet + Rugs + Stain Guard Bundle", ...}],
//	  "tips": [{"title": "Dry time", "description": "Allow 6 hours before walking on carpet."}],
//	  "warnings": ["Pricing: BASE_RATE value \"abc\" is not a number; kept default 199"]
//	}
type EffectiveConfig struct {
	Pricing  PricingCatalog `json:"pricing"`
	Deals    []Deal         `json:"deals"`
	Tips     []Tip          `json:"tips"`
	Warnings []string       `json:"warnings,omitempty"`
}
