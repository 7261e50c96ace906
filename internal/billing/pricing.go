package billing

import "github.com/brainsait/docuscan/internal/models"

// Plan is one row of the fixed pricing table.
type Plan struct {
	Tier       models.Tier `json:"tier"`
	Name       string      `json:"name"`
	PriceCents int64       `json:"price_cents"`
	Currency   string      `json:"currency"`
	// Credits granted on purchase; models.UnlimitedCredits pins the
	// unlimited sentinel.
	Credits  int      `json:"credits"`
	Features []string `json:"features"`
}

var plans = []Plan{
	{
		Tier:       models.TierFree,
		Name:       "Free",
		PriceCents: 0,
		Currency:   "usd",
		Credits:    10,
		Features:   []string{"10 OCR credits", "single file processing"},
	},
	{
		Tier:       models.TierStarter,
		Name:       "Starter",
		PriceCents: 999,
		Currency:   "usd",
		Credits:    100,
		Features:   []string{"100 OCR credits per month", "single file processing", "API keys"},
	},
	{
		Tier:       models.TierProfessional,
		Name:       "Professional",
		PriceCents: 2999,
		Currency:   "usd",
		Credits:    500,
		Features:   []string{"500 OCR credits per month", "batch processing", "document Q&A", "API keys"},
	},
	{
		Tier:       models.TierEnterprise,
		Name:       "Enterprise",
		PriceCents: 9999,
		Currency:   "usd",
		Credits:    models.UnlimitedCredits,
		Features:   []string{"unlimited OCR", "batch processing", "document Q&A", "API keys", "priority support"},
	},
}

// Plans returns the full pricing table in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanFor looks up the plan for a tier.
func PlanFor(tier models.Tier) (Plan, bool) {
	for _, p := range plans {
		if p.Tier == tier {
			return p, true
		}
	}
	return Plan{}, false
}
