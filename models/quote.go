package models

import "time"

// LineItem is one row of the quote's cost breakdown
type LineItem struct {
	Item string  `json:"item"`
	Cost float64 `json:"cost"`
}

// DiscountLine is one row of the quote's discount summary
type DiscountLine struct {
	Item   string  `json:"item"`
	Saving float64 `json:"saving"`
}

// QuoteResult is the itemized output of the quote engine.
// Example JSON:
//
//	{
//	  "subtotal": 289.5,
//	  "totalDiscount": 43.43,
//	  "finalTotal": 246.07,
//	  "breakdown": [{"item": "Carpet Cleaning (up to 500 sq ft)", "cost": 199}],
//	  "discountSummary": [{"item": "1-Year Membership Discount (15%)", "saving": 43.43}]
//	}
type QuoteResult struct {
	Subtotal        float64        `json:"subtotal"`
	TotalDiscount   float64        `json:"totalDiscount"`
	FinalTotal      float64        `json:"finalTotal"`
	Breakdown       []LineItem     `json:"breakdown"`
	DiscountSummary []DiscountLine `json:"discountSummary"`
}

// UpsellLine shows whether a catalog deal was taken, for rendering
type UpsellLine struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Accepted bool   `json:"accepted"`
	Details  string `json:"details,omitempty"`
}

// QuoteDocument is everything a renderer (PDF, email) needs to present a quote.
// Renderers read it; they never recompute prices.
type QuoteDocument struct {
	BusinessName string       `json:"businessName"`
	GeneratedAt  time.Time    `json:"generatedAt"`
	Job          JobDetails   `json:"job"`
	Result       QuoteResult  `json:"result"`
	Upsells      []UpsellLine `json:"upsells"`
	Notes        []Note       `json:"notes"`
	Tips         []Tip        `json:"tips"`
}

// SavedQuote is a computed quote persisted for later lookup
type SavedQuote struct {
	ID            int64          `json:"id"`
	SessionID     string         `json:"sessionId"`
	CustomerEmail string         `json:"customerEmail,omitempty"`
	Job           JobDetails     `json:"job"`
	Responses     []DealResponse `json:"responses"`
	Result        QuoteResult    `json:"result"`
	CreatedAt     time.Time      `json:"createdAt"`
}
