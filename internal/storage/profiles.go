package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/service"
	"github.com/google/uuid"
)

const profileColumns = `id, user_id, age, current_annual_gross_income, work_tenure_years,
	total_asset_gross_market_value, total_loan_outstanding_value, loan_tenure_years,
	lifespan_years, income_growth_rate, asset_growth_rate, created_at, updated_at`

// GetProfile returns the session user's profile.
func (s *SQLiteStorage) GetProfile(ctx context.Context, sess service.Session) (*model.Profile, error) {
	if err := validateSession(ctx, sess); err != nil {
		return nil, err
	}
	return s.getProfileTx(ctx, s.db, `WHERE user_id = ?`, sess.UserID)
}

// CreateProfile stores the session user's first profile. A user has at most one.
func (s *SQLiteStorage) CreateProfile(ctx context.Context, sess service.Session, p model.Profile) (*model.Profile, error) {
	if err := validateSession(ctx, sess); err != nil {
		return nil, err
	}
	if err := validateProfile(p); err != nil {
		return nil, err
	}
	applyProfileDefaults(&p)

	now := s.now()
	p.ID = uuid.NewString()
	p.UserID = sess.UserID
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO financial_profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.UserID,
		nullInt(p.Age), nullFloat(p.CurrentAnnualGrossIncome), nullInt(p.WorkTenureYears),
		nullFloat(p.TotalAssetGrossMarketValue), nullFloat(p.TotalLoanOutstandingValue), nullInt(p.LoanTenureYears),
		p.LifespanYears, p.IncomeGrowthRate, p.AssetGrowthRate, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: profile already exists", common.ErrDuplicateEntry)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return &p, nil
}

// UpdateProfile replaces every field of the profile with the given id.
func (s *SQLiteStorage) UpdateProfile(ctx context.Context, sess service.Session, id string, p model.Profile) (*model.Profile, error) {
	if err := validateSession(ctx, sess); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	if err := validateProfile(p); err != nil {
		return nil, err
	}
	applyProfileDefaults(&p)

	var updated *model.Profile
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE financial_profiles SET
				age = ?, current_annual_gross_income = ?, work_tenure_years = ?,
				total_asset_gross_market_value = ?, total_loan_outstanding_value = ?, loan_tenure_years = ?,
				lifespan_years = ?, income_growth_rate = ?, asset_growth_rate = ?, updated_at = ?
			WHERE id = ? AND user_id = ?
		`, nullInt(p.Age), nullFloat(p.CurrentAnnualGrossIncome), nullInt(p.WorkTenureYears),
			nullFloat(p.TotalAssetGrossMarketValue), nullFloat(p.TotalLoanOutstandingValue), nullInt(p.LoanTenureYears),
			p.LifespanYears, p.IncomeGrowthRate, p.AssetGrowthRate, s.now(),
			id, sess.UserID)
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: profile %s", common.ErrNotFound, id)
		}

		updated, err = s.getProfileTx(ctx, tx, `WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *SQLiteStorage) getProfileTx(ctx context.Context, q queryable, where string, arg any) (*model.Profile, error) {
	var (
		p                               model.Profile
		age, tenure, loanTenure         sql.NullInt64
		income, assets, loanOutstanding sql.NullFloat64
	)

	err := q.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM financial_profiles `+where, arg).Scan(
		&p.ID, &p.UserID, &age, &income, &tenure,
		&assets, &loanOutstanding, &loanTenure,
		&p.LifespanYears, &p.IncomeGrowthRate, &p.AssetGrowthRate, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: profile", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p.Age = intPtr(age)
	p.CurrentAnnualGrossIncome = floatPtr(income)
	p.WorkTenureYears = intPtr(tenure)
	p.TotalAssetGrossMarketValue = floatPtr(assets)
	p.TotalLoanOutstandingValue = floatPtr(loanOutstanding)
	p.LoanTenureYears = intPtr(loanTenure)
	return &p, nil
}

func applyProfileDefaults(p *model.Profile) {
	if p.LifespanYears == 0 {
		p.LifespanYears = model.DefaultLifespanYears
	}
	if p.IncomeGrowthRate == 0 {
		p.IncomeGrowthRate = model.DefaultIncomeGrowthRate
	}
	if p.AssetGrowthRate == 0 {
		p.AssetGrowthRate = model.DefaultAssetGrowthRate
	}
}
