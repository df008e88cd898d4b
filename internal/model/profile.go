// Package model holds the financial input model: the profile, its entry collections, and the plan that owns them.
package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Defaults applied to a fresh profile and to blank or unparseable input.
const (
	DefaultLifespanYears    = 85
	DefaultIncomeGrowthRate = 0.06
	DefaultAssetGrowthRate  = 0.06
)

// MaxYears bounds every age and year-count field.
const MaxYears = 150

// Field names a profile scalar. Values match the remote store's JSON keys.
type Field string

// Profile fields.
const (
	FieldAge                        Field = "age"
	FieldCurrentAnnualGrossIncome   Field = "current_annual_gross_income"
	FieldWorkTenureYears            Field = "work_tenure_years"
	FieldTotalAssetGrossMarketValue Field = "total_asset_gross_market_value"
	FieldTotalLoanOutstandingValue  Field = "total_loan_outstanding_value"
	FieldLoanTenureYears            Field = "loan_tenure_years"
	FieldLifespanYears              Field = "lifespan_years"
	FieldIncomeGrowthRate           Field = "income_growth_rate"
	FieldAssetGrowthRate            Field = "asset_growth_rate"
)

// FieldSpec describes a profile field for forms and tables.
type FieldSpec struct {
	Name  Field
	Label string
}

// ProfileFields lists the profile fields in form order.
var ProfileFields = []FieldSpec{
	{Name: FieldAge, Label: "Age"},
	{Name: FieldCurrentAnnualGrossIncome, Label: "Current annual gross income"},
	{Name: FieldWorkTenureYears, Label: "Work tenure (years)"},
	{Name: FieldTotalAssetGrossMarketValue, Label: "Total assets (market value)"},
	{Name: FieldTotalLoanOutstandingValue, Label: "Total loan outstanding"},
	{Name: FieldLoanTenureYears, Label: "Loan tenure (years)"},
	{Name: FieldLifespanYears, Label: "Lifespan (years)"},
	{Name: FieldIncomeGrowthRate, Label: "Income growth rate"},
	{Name: FieldAssetGrowthRate, Label: "Asset growth rate"},
}

var fieldAliases = map[string]Field{
	"income":   FieldCurrentAnnualGrossIncome,
	"tenure":   FieldWorkTenureYears,
	"assets":   FieldTotalAssetGrossMarketValue,
	"lifespan": FieldLifespanYears,
	"growth":   FieldIncomeGrowthRate,
}

// ParseField resolves a field name. It accepts snake_case, camelCase, and a few short aliases.
func ParseField(name string) (Field, error) {
	key := normalizeName(name)
	for _, spec := range ProfileFields {
		if normalizeName(string(spec.Name)) == key {
			return spec.Name, nil
		}
	}
	if f, ok := fieldAliases[key]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(name)
}

// Profile is the scalar half of the input model. Nil pointers mean the field is blank.
type Profile struct {
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
	Age                        *int
	CurrentAnnualGrossIncome   *float64
	WorkTenureYears            *int
	TotalAssetGrossMarketValue *float64
	TotalLoanOutstandingValue  *float64
	LoanTenureYears            *int
	ID                         string
	UserID                     string
	LifespanYears              int
	IncomeGrowthRate           float64
	AssetGrowthRate            float64
}

// NewProfile returns a blank profile with defaults applied.
func NewProfile() Profile {
	return Profile{
		LifespanYears:    DefaultLifespanYears,
		IncomeGrowthRate: DefaultIncomeGrowthRate,
		AssetGrowthRate:  DefaultAssetGrowthRate,
	}
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	out := p
	out.Age = clonePtr(p.Age)
	out.CurrentAnnualGrossIncome = clonePtr(p.CurrentAnnualGrossIncome)
	out.WorkTenureYears = clonePtr(p.WorkTenureYears)
	out.TotalAssetGrossMarketValue = clonePtr(p.TotalAssetGrossMarketValue)
	out.TotalLoanOutstandingValue = clonePtr(p.TotalLoanOutstandingValue)
	out.LoanTenureYears = clonePtr(p.LoanTenureYears)
	return out
}

// Set replaces one field from raw text. Blank clears optional fields; anything
// unparseable becomes 0. Lifespan and growth rates fall back to their defaults instead.
func (p *Profile) Set(field Field, value string) {
	switch field {
	case FieldAge:
		p.Age = parseIntPtr(value)
	case FieldCurrentAnnualGrossIncome:
		p.CurrentAnnualGrossIncome = parseFloatPtr(value)
	case FieldWorkTenureYears:
		p.WorkTenureYears = parseIntPtr(value)
	case FieldTotalAssetGrossMarketValue:
		p.TotalAssetGrossMarketValue = parseFloatPtr(value)
	case FieldTotalLoanOutstandingValue:
		p.TotalLoanOutstandingValue = parseFloatPtr(value)
	case FieldLoanTenureYears:
		p.LoanTenureYears = parseIntPtr(value)
	case FieldLifespanYears:
		p.LifespanYears = intOrDefault(value, DefaultLifespanYears)
	case FieldIncomeGrowthRate:
		p.IncomeGrowthRate = floatOrDefault(value, DefaultIncomeGrowthRate)
	case FieldAssetGrowthRate:
		p.AssetGrowthRate = floatOrDefault(value, DefaultAssetGrowthRate)
	}
}

// Get renders one field as form text. Blank fields render as "".
func (p Profile) Get(field Field) string {
	switch field {
	case FieldAge:
		return formatIntPtr(p.Age)
	case FieldCurrentAnnualGrossIncome:
		return formatFloatPtr(p.CurrentAnnualGrossIncome)
	case FieldWorkTenureYears:
		return formatIntPtr(p.WorkTenureYears)
	case FieldTotalAssetGrossMarketValue:
		return formatFloatPtr(p.TotalAssetGrossMarketValue)
	case FieldTotalLoanOutstandingValue:
		return formatFloatPtr(p.TotalLoanOutstandingValue)
	case FieldLoanTenureYears:
		return formatIntPtr(p.LoanTenureYears)
	case FieldLifespanYears:
		return strconv.Itoa(p.LifespanYears)
	case FieldIncomeGrowthRate:
		return FormatNumber(p.IncomeGrowthRate)
	case FieldAssetGrowthRate:
		return FormatNumber(p.AssetGrowthRate)
	}
	return ""
}

// Complete reports whether the fields the summary needs are present.
func (p Profile) Complete() bool {
	return p.Age != nil && p.CurrentAnnualGrossIncome != nil
}

// RemainingLife is lifespan minus age. It is not clamped.
func (p Profile) RemainingLife() int {
	return min(p.LifespanYears, MaxYears) - IntValue(p.Age)
}

// Warnings lists non-blocking problems with the profile.
func (p Profile) Warnings() []string {
	var warnings []string
	if p.Age != nil && p.RemainingLife() < 0 {
		warnings = append(warnings, fmt.Sprintf(
			"lifespan (%d) is below current age (%d); future expenses go negative and no projection is drawn",
			p.LifespanYears, *p.Age))
	}
	if p.Age != nil && *p.Age < 0 {
		warnings = append(warnings, "age is negative")
	}
	return warnings
}

// IntValue dereferences p, treating nil as 0.
func IntValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// FloatValue dereferences p, treating nil as 0.
func FloatValue(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }

// ParseNumber reads a user-typed number. Grouping commas, underscores, spaces
// and a leading rupee sign are ignored. ok is false for blank input.
func ParseNumber(value string) (n float64, ok bool) {
	cleaned := strings.NewReplacer(",", "", "_", "", " ", "", "₹", "").Replace(strings.TrimSpace(value))
	if cleaned == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, true
	}
	return n, true
}

// FormatNumber renders a float without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseIntPtr(value string) *int {
	n, ok := ParseNumber(value)
	if !ok {
		return nil
	}
	v := clampYears(n)
	return &v
}

// clampYears truncates n into [-MaxYears, MaxYears].
func clampYears(n float64) int {
	return int(math.Trunc(max(-MaxYears, min(n, MaxYears))))
}

func parseFloatPtr(value string) *float64 {
	n, ok := ParseNumber(value)
	if !ok {
		return nil
	}
	return &n
}

func intOrDefault(value string, def int) int {
	n, _ := ParseNumber(value)
	if v := clampYears(n); v != 0 {
		return v
	}
	return def
}

func floatOrDefault(value string, def float64) float64 {
	if n, _ := ParseNumber(value); n != 0 {
		return n
	}
	return def
}

func formatIntPtr(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func formatFloatPtr(p *float64) string {
	if p == nil {
		return ""
	}
	return FormatNumber(*p)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
