package catalog

// Plan is an immutable catalogue entry describing a subscription offering.
type Plan struct {
	ID              string   `json:"id"`
	Tier            Tier     `json:"tier"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	PriceMonthly    float64  `json:"priceMonthly"`
	PriceAnnual     float64  `json:"priceAnnual"`
	AllowedLevels   []Level  `json:"allowedLevels"`
	ContentLimit    int      `json:"contentLimit"` // 0 = unlimited
	Features        []string `json:"features"`
	PrioritySupport bool     `json:"prioritySupport"`
	APIAccess       bool     `json:"apiAccess"`
	Active          bool     `json:"active"`
}

// Unlimited reports whether the plan enforces no monthly content limit.
func (p *Plan) Unlimited() bool { return p.ContentLimit == 0 }

// AllowsLevel reports whether the plan's tier includes a content level.
func (p *Plan) AllowsLevel(level Level) bool { return TierHasLevel(p.Tier, level) }

// Plan IDs follow the "plan_<tier>" convention.
const (
	PlanFree       = "plan_free"
	PlanPremium    = "plan_premium"
	PlanEnterprise = "plan_enterprise"
)

// Plans is the hardcoded plan catalogue, seeded once and never mutated.
var Plans = map[string]*Plan{
	PlanFree: {
		ID:           PlanFree,
		Tier:         TierFree,
		Name:         "Free",
		Description:  "Access to public content",
		PriceMonthly: 0,
		PriceAnnual:  0,
		AllowedLevels: []Level{
			LevelPublic,
		},
		ContentLimit: 10,
		Features: []string{
			"Access to public articles",
			"Limited to 10 articles per month",
			"Basic content only",
		},
		Active: true,
	},
	PlanPremium: {
		ID:           PlanPremium,
		Tier:         TierPremium,
		Name:         "Premium",
		Description:  "Full access to premium content",
		PriceMonthly: 9.99,
		PriceAnnual:  99.99,
		AllowedLevels: []Level{
			LevelPublic, LevelRegistered, LevelPremium,
		},
		ContentLimit: 0,
		Features: []string{
			"Unlimited access to all premium content",
			"Ad-free experience",
			"Early access to new content",
			"Newsletter subscription",
			"Mobile app access",
		},
		Active: true,
	},
	PlanEnterprise: {
		ID:           PlanEnterprise,
		Tier:         TierEnterprise,
		Name:         "Enterprise",
		Description:  "Enterprise-grade access with API",
		PriceMonthly: 99.99,
		PriceAnnual:  999.99,
		AllowedLevels: []Level{
			LevelPublic, LevelRegistered, LevelPremium, LevelEnterprise,
		},
		ContentLimit: 0,
		Features: []string{
			"All Premium features",
			"API access for integration",
			"Priority customer support",
			"Custom content feeds",
			"Analytics dashboard",
			"White-label options",
			"Dedicated account manager",
		},
		PrioritySupport: true,
		APIAccess:       true,
		Active:          true,
	},
}

// GetPlan looks up a plan by ID.
func GetPlan(planID string) (*Plan, error) {
	p, ok := Plans[planID]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return p, nil
}

// PlanForTier returns the catalogue plan for a tier.
func PlanForTier(tier Tier) (*Plan, error) {
	return GetPlan("plan_" + string(tier))
}

// ListPlans returns catalogue plans, ordered free → premium → enterprise.
func ListPlans(activeOnly bool) []*Plan {
	ids := []string{PlanFree, PlanPremium, PlanEnterprise}
	plans := make([]*Plan, 0, len(ids))
	for _, id := range ids {
		p := Plans[id]
		if activeOnly && !p.Active {
			continue
		}
		plans = append(plans, p)
	}
	return plans
}
