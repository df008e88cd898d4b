package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/service"
	"github.com/google/uuid"
)

// entryTable maps a kind to its table and text column. Loans store the label as "name".
type entryTable struct {
	name    string
	textCol string
	hasEMI  bool
}

func tableFor(kind model.EntryKind) (entryTable, error) {
	switch kind {
	case model.KindGoal:
		return entryTable{name: "financial_goals", textCol: "description"}, nil
	case model.KindExpense:
		return entryTable{name: "financial_expenses", textCol: "description"}, nil
	case model.KindLoan:
		return entryTable{name: "financial_loans", textCol: "name", hasEMI: true}, nil
	}
	return entryTable{}, fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
}

func (t entryTable) selectSQL() string {
	emi := "NULL"
	if t.hasEMI {
		emi = "emi"
	}
	return fmt.Sprintf(`SELECT id, %s, amount, %s, order_index FROM %s`, t.textCol, emi, t.name)
}

// ListEntries returns the session user's entries of one kind in display order.
func (s *SQLiteStorage) ListEntries(ctx context.Context, sess service.Session, kind model.EntryKind) ([]model.Entry, error) {
	if err := validateSession(ctx, sess); err != nil {
		return nil, err
	}
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		t.selectSQL()+` WHERE user_id = ? ORDER BY order_index, created_at`, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind.Plural(), err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows, kind)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", kind.Plural(), err)
	}
	return entries, nil
}

// CreateEntry inserts a new entry for the session user and returns it with its id.
func (s *SQLiteStorage) CreateEntry(ctx context.Context, sess service.Session, e model.Entry) (*model.Entry, error) {
	if err := validateSession(ctx, sess); err != nil {
		return nil, err
	}
	if err := validateEntry(e); err != nil {
		return nil, err
	}
	t, err := tableFor(e.Kind)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := e.Clone()
	out.ID = uuid.NewString()
	out.IsNew = false

	cols := []string{"id", "user_id", t.textCol, "amount", "order_index", "created_at", "updated_at"}
	args := []any{out.ID, sess.UserID, out.Description, out.Amount, out.OrderIndex, now, now}
	if t.hasEMI {
		cols = append(cols, "emi")
		args = append(args, nullFloat(out.EMI))
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		t.name, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", e.Kind, err)
	}

	return &out, nil
}

// UpdateEntry overwrites the entry with the given id. Entries owned by other users are not found.
func (s *SQLiteStorage) UpdateEntry(ctx context.Context, sess service.Session, id string, e model.Entry) (*model.Entry, error) {
	if err := validateSession(ctx, sess); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	if err := validateEntry(e); err != nil {
		return nil, err
	}
	t, err := tableFor(e.Kind)
	if err != nil {
		return nil, err
	}

	sets := fmt.Sprintf("%s = ?, amount = ?, order_index = ?, updated_at = ?", t.textCol)
	args := []any{e.Description, e.Amount, e.OrderIndex, s.now()}
	if t.hasEMI {
		sets += ", emi = ?"
		args = append(args, nullFloat(e.EMI))
	}
	args = append(args, id, sess.UserID)

	var updated model.Entry
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET %s WHERE id = ? AND user_id = ?`, t.name, sets), args...)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", e.Kind, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s %s", common.ErrNotFound, e.Kind, id)
		}

		updated, err = scanEntry(tx.QueryRowContext(ctx, t.selectSQL()+` WHERE id = ?`, id), e.Kind)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteEntry removes the entry with the given id.
func (s *SQLiteStorage) DeleteEntry(ctx context.Context, sess service.Session, kind model.EntryKind, id string) error {
	if err := validateSession(ctx, sess); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND user_id = ?`, t.name), id, sess.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s %s", common.ErrNotFound, kind, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner, kind model.EntryKind) (model.Entry, error) {
	var (
		e   = model.Entry{Kind: kind}
		emi sql.NullFloat64
	)
	err := row.Scan(&e.ID, &e.Description, &e.Amount, &emi, &e.OrderIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Entry{}, fmt.Errorf("%w: %s", common.ErrNotFound, kind)
	}
	if err != nil {
		return model.Entry{}, fmt.Errorf("failed to scan %s: %w", kind, err)
	}
	e.EMI = floatPtr(emi)
	return e, nil
}
