package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/service"
	"github.com/google/uuid"
)

// SaveScenario stores a named summary for the session user.
func (s *SQLiteStorage) SaveScenario(ctx context.Context, sess service.Session, sc model.Scenario) (*model.Scenario, error) {
	if err := validateSession(ctx, sess); err != nil {
		return nil, err
	}
	sc.Name = strings.TrimSpace(sc.Name)
	if sc.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidScenario)
	}

	sc.ID = uuid.NewString()
	sc.UserID = sess.UserID
	sc.CreatedAt = s.now()

	sum := sc.Summary
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO financial_scenarios (
			id, user_id, name,
			total_existing_assets, total_existing_liabilities, total_human_capital,
			total_future_expenses, total_financial_goals, current_networth,
			surplus_deficit, remaining_life, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sc.ID, sc.UserID, sc.Name,
		sum.TotalExistingAssets, sum.TotalExistingLiabilities, sum.TotalHumanCapital,
		sum.TotalFutureExpenses, sum.TotalFinancialGoals, sum.CurrentNetworth,
		sum.SurplusDeficit, sum.RemainingLife, sc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save scenario: %w", err)
	}

	return &sc, nil
}

// ListScenarios returns the session user's scenarios, newest first.
func (s *SQLiteStorage) ListScenarios(ctx context.Context, sess service.Session) ([]model.Scenario, error) {
	if err := validateSession(ctx, sess); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name,
			total_existing_assets, total_existing_liabilities, total_human_capital,
			total_future_expenses, total_financial_goals, current_networth,
			surplus_deficit, remaining_life, created_at
		FROM financial_scenarios
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Scenario
	for rows.Next() {
		var sc model.Scenario
		sum := &sc.Summary
		if err := rows.Scan(&sc.ID, &sc.UserID, &sc.Name,
			&sum.TotalExistingAssets, &sum.TotalExistingLiabilities, &sum.TotalHumanCapital,
			&sum.TotalFutureExpenses, &sum.TotalFinancialGoals, &sum.CurrentNetworth,
			&sum.SurplusDeficit, &sum.RemainingLife, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
