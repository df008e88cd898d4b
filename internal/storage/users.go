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
	"golang.org/x/crypto/bcrypt"
)

// ErrBadCredentials is returned for an unknown username or wrong password.
var ErrBadCredentials = fmt.Errorf("%w: invalid username or password", common.ErrUnauthenticated)

// CreateUser registers an account with a bcrypt-hashed password.
func (s *SQLiteStorage) CreateUser(ctx context.Context, reg service.Registration) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	if err := validateRegistration(reg); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:        uuid.NewString(),
		Username:  reg.Username,
		Email:     reg.Email,
		CreatedAt: now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.Username, user.Email, string(hash), now, now)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: username %q is taken", common.ErrDuplicateEntry, reg.Username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate checks a username and password.
func (s *SQLiteStorage) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	user, hash, err := s.userByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, common.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return user, nil
}

// GetUser loads an account by id.
func (s *SQLiteStorage) GetUser(ctx context.Context, id string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	user, _, err := s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, COALESCE(email, ''), password_hash, created_at
		FROM users WHERE id = ?
	`, id))
	return user, err
}

// UpdateUser changes the username and/or email.
func (s *SQLiteStorage) UpdateUser(ctx context.Context, id string, update service.UserUpdate) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	current, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Username != "" {
		if !usernamePattern.MatchString(update.Username) {
			return nil, fmt.Errorf("%w: invalid username", ErrInvalidUser)
		}
		current.Username = update.Username
	}
	if update.Email != "" {
		current.Email = strings.TrimSpace(update.Email)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE users SET username = ?, email = ?, updated_at = ? WHERE id = ?
	`, current.Username, current.Email, s.now(), id)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: username %q is taken", common.ErrDuplicateEntry, update.Username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return current, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *SQLiteStorage) ChangePassword(ctx context.Context, id, current, next string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	_, hash, err := s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, COALESCE(email, ''), password_hash, created_at
		FROM users WHERE id = ?
	`, id))
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)) != nil {
		return fmt.Errorf("%w: current password is incorrect", ErrInvalidUser)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?
	`, string(newHash), s.now(), id); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// EnsureLocalUser returns the single account used by offline mode, creating it on first use.
func (s *SQLiteStorage) EnsureLocalUser(ctx context.Context, username string) (*model.User, error) {
	user, _, err := s.userByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return s.CreateUser(ctx, service.Registration{Username: username, Password: uuid.NewString()})
}

func (s *SQLiteStorage) userByUsername(ctx context.Context, username string) (*model.User, string, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, COALESCE(email, ''), password_hash, created_at
		FROM users WHERE username = ?
	`, username))
}

func (s *SQLiteStorage) scanUser(row *sql.Row) (*model.User, string, error) {
	var user model.User
	var hash string
	err := row.Scan(&user.ID, &user.Username, &user.Email, &hash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("%w: user", common.ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	return &user, hash, nil
}
