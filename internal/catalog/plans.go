package catalog

// CreditPlan is a purchasable bundle of time credits. Price is in the
// platform's display currency and is never charged for real; the purchase
// flow settles immediately without a payment gateway.
type CreditPlan struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Price   int    `json:"price"`
	Credits int    `json:"credits"`
	Popular bool   `json:"popular"`
}

// CreditPlans is the purchase-flow plan catalog.
var CreditPlans = []CreditPlan{
	{ID: "starter", Name: "Starter Pack", Price: 49, Credits: 10},
	{ID: "popular", Name: "Popular Choice", Price: 99, Credits: 25, Popular: true},
	{ID: "premium", Name: "Premium Pack", Price: 199, Credits: 60},
}

// PlanByID returns the plan with the given id, if any.
func PlanByID(id string) (CreditPlan, bool) {
	for _, p := range CreditPlans {
		if p.ID == id {
			return p, true
		}
	}
	return CreditPlan{}, false
}
