// Package service defines the contracts between the workflow and its collaborators.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/life-sheet/internal/model"
)

// Session is an authenticated login. It is passed explicitly into every call
// that touches the profile store.
type Session struct {
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
}

// Valid reports whether the session can be used for store calls.
func (s Session) Valid() bool {
	if s.Token == "" || s.UserID == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt)
}

// ProfileStore is the remote profile store. Implementations report missing
// sessions as common.ErrUnauthenticated, unknown records as common.ErrNotFound,
// and rejected records as common.ErrValidation.
type ProfileStore interface {
	GetProfile(ctx context.Context, sess Session) (*model.Profile, error)
	CreateProfile(ctx context.Context, sess Session, profile model.Profile) (*model.Profile, error)
	UpdateProfile(ctx context.Context, sess Session, id string, profile model.Profile) (*model.Profile, error)

	ListEntries(ctx context.Context, sess Session, kind model.EntryKind) ([]model.Entry, error)
	CreateEntry(ctx context.Context, sess Session, entry model.Entry) (*model.Entry, error)
	UpdateEntry(ctx context.Context, sess Session, id string, entry model.Entry) (*model.Entry, error)
	DeleteEntry(ctx context.Context, sess Session, kind model.EntryKind, id string) error
}

// ScenarioStore saves named summaries.
type ScenarioStore interface {
	SaveScenario(ctx context.Context, sess Session, scenario model.Scenario) (*model.Scenario, error)
	ListScenarios(ctx context.Context, sess Session) ([]model.Scenario, error)
}

// Registration holds the fields for a new account.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// UserUpdate changes account details. Empty fields are left alone.
type UserUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Authenticator manages accounts and sessions.
type Authenticator interface {
	Register(ctx context.Context, reg Registration) (Session, *model.User, error)
	Login(ctx context.Context, username, password string) (Session, *model.User, error)
	Logout(ctx context.Context, sess Session) error
	CurrentUser(ctx context.Context, sess Session) (*model.User, error)
	UpdateUser(ctx context.Context, sess Session, update UserUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, sess Session, current, next string) error
}

// BalanceSource produces account balances to fold into the plan.
type BalanceSource interface {
	FetchHoldings(ctx context.Context) (model.Holdings, error)
}

// ReportWriter exports a computed report.
type ReportWriter interface {
	Write(ctx context.Context, report model.Report) error
}
