package subscription

import "time"

// Status enumerates subscription states.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusActive  Status = "ACTIVE"
	StatusExpired Status = "EXPIRED"
)

// Plan is a billable subscription tier. Prices are in paisa.
type Plan struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	PricePaisa   int64  `json:"price_paisa"`
	DurationDays int    `json:"duration_days"`
}

// Subscription ties a tenant to a plan.
type Subscription struct {
	ID           int64
	CompanyID    int64
	PlanCode     string
	Status       Status
	DurationDays int
	ExpiresAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Catalog is the fixed plan lineup.
var Catalog = []Plan{
	{Code: "starter", Name: "Starter", PricePaisa: 100000, DurationDays: 30},
	{Code: "business", Name: "Business", PricePaisa: 250000, DurationDays: 30},
	{Code: "business-annual", Name: "Business Annual", PricePaisa: 2500000, DurationDays: 365},
}

// PlanByCode looks up a catalog plan.
func PlanByCode(code string) (Plan, bool) {
	for _, p := range Catalog {
		if p.Code == code {
			return p, true
		}
	}
	return Plan{}, false
}
