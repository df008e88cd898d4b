// Package api defines the JSON wire format shared by the profile store server
// and its HTTP client.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/life-sheet/internal/model"
)

// SessionCookie carries the signed session token.
const SessionCookie = "lifesheet_session"

// ID is a record identifier. It decodes from a JSON string or number and
// always encodes as a string.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Number is an amount that decodes from a JSON number or a numeric string.
type Number float64

// UnmarshalJSON implements json.Unmarshaler. Blank strings and null decode as 0.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", s)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Profile is the financial profile as stored remotely. Blank fields are null.
type Profile struct {
	CreatedAt                  *time.Time `json:"created_at,omitempty"`
	UpdatedAt                  *time.Time `json:"updated_at,omitempty"`
	Age                        *int       `json:"age"`
	CurrentAnnualGrossIncome   *float64   `json:"current_annual_gross_income"`
	WorkTenureYears            *int       `json:"work_tenure_years"`
	TotalAssetGrossMarketValue *float64   `json:"total_asset_gross_market_value"`
	TotalLoanOutstandingValue  *float64   `json:"total_loan_outstanding_value"`
	LoanTenureYears            *int       `json:"loan_tenure_years"`
	LifespanYears              *int       `json:"lifespan_years"`
	IncomeGrowthRate           *float64   `json:"income_growth_rate"`
	AssetGrowthRate            *float64   `json:"asset_growth_rate"`
	ID                         ID         `json:"id,omitempty"`
	UserID                     ID         `json:"user_id,omitempty"`
}

// NewProfile converts the local profile for the wire.
func NewProfile(p model.Profile) Profile {
	out := Profile{
		ID:                         ID(p.ID),
		UserID:                     ID(p.UserID),
		Age:                        clone(p.Age),
		CurrentAnnualGrossIncome:   clone(p.CurrentAnnualGrossIncome),
		WorkTenureYears:            clone(p.WorkTenureYears),
		TotalAssetGrossMarketValue: clone(p.TotalAssetGrossMarketValue),
		TotalLoanOutstandingValue:  clone(p.TotalLoanOutstandingValue),
		LoanTenureYears:            clone(p.LoanTenureYears),
	}
	if p.LifespanYears != 0 {
		out.LifespanYears = &p.LifespanYears
	}
	if p.IncomeGrowthRate != 0 {
		out.IncomeGrowthRate = &p.IncomeGrowthRate
	}
	if p.AssetGrowthRate != 0 {
		out.AssetGrowthRate = &p.AssetGrowthRate
	}
	if !p.CreatedAt.IsZero() {
		out.CreatedAt = &p.CreatedAt
	}
	if !p.UpdatedAt.IsZero() {
		out.UpdatedAt = &p.UpdatedAt
	}
	return out
}

// Model converts a wire profile back, filling defaults for missing lifespan
// and growth rates.
func (p Profile) Model() model.Profile {
	out := model.NewProfile()
	out.ID = string(p.ID)
	out.UserID = string(p.UserID)
	out.Age = clone(p.Age)
	out.CurrentAnnualGrossIncome = clone(p.CurrentAnnualGrossIncome)
	out.WorkTenureYears = clone(p.WorkTenureYears)
	out.TotalAssetGrossMarketValue = clone(p.TotalAssetGrossMarketValue)
	out.TotalLoanOutstandingValue = clone(p.TotalLoanOutstandingValue)
	out.LoanTenureYears = clone(p.LoanTenureYears)
	if v := model.IntValue(p.LifespanYears); v != 0 {
		out.LifespanYears = v
	}
	if v := model.FloatValue(p.IncomeGrowthRate); v != 0 {
		out.IncomeGrowthRate = v
	}
	if v := model.FloatValue(p.AssetGrowthRate); v != 0 {
		out.AssetGrowthRate = v
	}
	if p.CreatedAt != nil {
		out.CreatedAt = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = *p.UpdatedAt
	}
	return out
}

// Entry is a goal, expense or loan on the wire. Loans carry their text in
// Name; goals and expenses in Description.
type Entry struct {
	EMI         *float64 `json:"emi,omitempty"`
	ID          ID       `json:"id,omitempty"`
	UserID      ID       `json:"user_id,omitempty"`
	ProfileID   ID       `json:"profile_id,omitempty"`
	Description string   `json:"description,omitempty"`
	Name        string   `json:"name,omitempty"`
	Amount      Number   `json:"amount"`
	OrderIndex  int      `json:"order_index,omitempty"`
}

// NewEntry converts a local entry for the wire.
func NewEntry(e model.Entry) Entry {
	out := Entry{
		ID:         ID(e.ID),
		Amount:     Number(e.Amount),
		OrderIndex: e.OrderIndex,
	}
	if e.Kind == model.KindLoan {
		out.Name = e.Description
		out.EMI = clone(e.EMI)
	} else {
		out.Description = e.Description
	}
	return out
}

// Model converts a wire entry of the given kind back.
func (e Entry) Model(kind model.EntryKind) model.Entry {
	out := model.Entry{
		Kind:        kind,
		ID:          string(e.ID),
		Description: e.Description,
		Amount:      float64(e.Amount),
		OrderIndex:  e.OrderIndex,
	}
	if kind == model.KindLoan {
		out.Description = e.Name
		out.EMI = clone(e.EMI)
	}
	return out
}

// Scenario is a saved summary on the wire.
type Scenario struct {
	CreatedAt time.Time     `json:"created_at"`
	ID        ID            `json:"id,omitempty"`
	UserID    ID            `json:"user_id,omitempty"`
	Name      string        `json:"name"`
	Summary   model.Summary `json:"summary"`
}

// NewScenario converts a scenario for the wire.
func NewScenario(s model.Scenario) Scenario {
	return Scenario{
		CreatedAt: s.CreatedAt,
		ID:        ID(s.ID),
		UserID:    ID(s.UserID),
		Name:      s.Name,
		Summary:   s.Summary,
	}
}

// Model converts a wire scenario back.
func (s Scenario) Model() model.Scenario {
	return model.Scenario{
		CreatedAt: s.CreatedAt,
		ID:        string(s.ID),
		UserID:    string(s.UserID),
		Name:      s.Name,
		Summary:   s.Summary,
	}
}

// User is an account on the wire.
type User struct {
	CreatedAt time.Time `json:"created_at"`
	ID        ID        `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
}

// NewUser converts an account for the wire.
func NewUser(u model.User) User {
	return User{CreatedAt: u.CreatedAt, ID: ID(u.ID), Username: u.Username, Email: u.Email}
}

// Model converts a wire user back.
func (u User) Model() model.User {
	return model.User{CreatedAt: u.CreatedAt, ID: string(u.ID), Username: u.Username, Email: u.Email}
}

// Credentials is the login request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PasswordChange is the change-password request.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse is returned by register and login alongside the session cookie.
type AuthResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
	Message   string    `json:"message,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Envelope keys for single records and lists.
const (
	KeyProfile   = "profile"
	KeyUser      = "user"
	KeyScenario  = "scenario"
	KeyScenarios = "scenarios"
)

// Resource is the URL segment and list key for kind, e.g. "goals".
func Resource(kind model.EntryKind) string {
	switch kind {
	case model.KindGoal:
		return "goals"
	case model.KindExpense:
		return "expenses"
	case model.KindLoan:
		return "loans"
	}
	return ""
}

// Key is the envelope key for a single record of kind, e.g. "goal".
func Key(kind model.EntryKind) string {
	return string(kind)
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
