package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/service"
)

// Validation errors. Record-level ones wrap common.ErrValidation so they map to 400.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")

	ErrInvalidProfile  = fmt.Errorf("%w: invalid profile", common.ErrValidation)
	ErrInvalidEntry    = fmt.Errorf("%w: invalid entry", common.ErrValidation)
	ErrInvalidUser     = fmt.Errorf("%w: invalid user", common.ErrValidation)
	ErrInvalidScenario = fmt.Errorf("%w: invalid scenario", common.ErrValidation)
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateSession ensures the call is scoped to a user.
func validateSession(ctx context.Context, sess service.Session) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(sess.UserID) == "" {
		return common.ErrUnauthenticated
	}
	return nil
}

// validateProfile requires the fields the summary depends on.
func validateProfile(p model.Profile) error {
	if p.Age == nil {
		return fmt.Errorf("%w: age is required", ErrInvalidProfile)
	}
	if p.CurrentAnnualGrossIncome == nil {
		return fmt.Errorf("%w: current_annual_gross_income is required", ErrInvalidProfile)
	}
	if *p.Age < 0 {
		return fmt.Errorf("%w: age cannot be negative", ErrInvalidProfile)
	}
	if *p.CurrentAnnualGrossIncome < 0 {
		return fmt.Errorf("%w: income cannot be negative", ErrInvalidProfile)
	}
	years := map[model.Field]int{
		model.FieldAge:           *p.Age,
		model.FieldLifespanYears: p.LifespanYears,
	}
	if p.WorkTenureYears != nil {
		years[model.FieldWorkTenureYears] = *p.WorkTenureYears
	}
	if p.LoanTenureYears != nil {
		years[model.FieldLoanTenureYears] = *p.LoanTenureYears
	}
	for field, v := range years {
		if v > model.MaxYears {
			return fmt.Errorf("%w: %s cannot exceed %d", ErrInvalidProfile, field, model.MaxYears)
		}
	}
	return nil
}

// validateEntry requires a description for goals and expenses, and a name or amount for loans.
func validateEntry(e model.Entry) error {
	switch e.Kind {
	case model.KindGoal, model.KindExpense:
		if strings.TrimSpace(e.Description) == "" {
			return fmt.Errorf("%w: %s description is required", ErrInvalidEntry, e.Kind)
		}
	case model.KindLoan:
		if strings.TrimSpace(e.Description) == "" && e.Amount == 0 {
			return fmt.Errorf("%w: loan name or amount is required", ErrInvalidEntry)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEntry, e.Kind)
	}
	return nil
}

func validateRegistration(reg service.Registration) error {
	if !usernamePattern.MatchString(reg.Username) {
		return fmt.Errorf("%w: username must be 3-32 letters, digits, '.', '_' or '-'", ErrInvalidUser)
	}
	return validatePassword(reg.Password)
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidUser, MinPasswordLength)
	}
	return nil
}
