package model

import "time"

// Summary is the aggregate computed from a snapshot.
type Summary struct {
	TotalExistingAssets      float64 `json:"total_existing_assets"`
	TotalExistingLiabilities float64 `json:"total_existing_liabilities"`
	TotalHumanCapital        float64 `json:"total_human_capital"`
	TotalFutureExpenses      float64 `json:"total_future_expenses"`
	TotalFinancialGoals      float64 `json:"total_financial_goals"`
	CurrentNetworth          float64 `json:"current_networth"`
	SurplusDeficit           float64 `json:"surplus_deficit"`
	RemainingLife            int     `json:"remaining_life"`
}

// YearPoint is one year of the asset projection.
type YearPoint struct {
	Year  int   `json:"year"`
	Age   int   `json:"age"`
	Asset int64 `json:"asset"`
}

// Report bundles everything an exporter writes.
type Report struct {
	GeneratedAt time.Time
	Snapshot    Snapshot
	Projection  []YearPoint
	Summary     Summary
}

// Scenario is a named summary saved for later comparison.
type Scenario struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Summary   Summary   `json:"summary"`
}

// User is an account on the profile store.
type User struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
}

// DisplayName prefers the username, falling back to email.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
