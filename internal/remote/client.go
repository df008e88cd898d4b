// Package remote talks to the profile store over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/life-sheet/internal/api"
	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/service"
)

// StatusError is a non-2xx response. It unwraps to the matching common sentinel.
type StatusError struct {
	kind       error
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return e.Message
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

// Client implements service.ProfileStore, service.ScenarioStore and
// service.Authenticator against the REST API.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// NewClient creates a client for baseURL, e.g. http://localhost:10000/api.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: common.ComponentLogger(logger, "remote"),
	}
}

// do sends one request. A non-nil sess attaches the session cookie. When out is
// non-nil the body is decoded into it as an envelope map.
func (c *Client) do(ctx context.Context, sess *service.Session, method, path string, body any, out any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil && sess.Token != "" {
		req.AddCookie(&http.Cookie{Name: api.SessionCookie, Value: sess.Token})
	}

	c.logger.Debug("API request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, decodeError(resp.StatusCode, data)
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp, nil
}

func decodeError(status int, body []byte) error {
	var e api.ErrorResponse
	_ = json.Unmarshal(body, &e)
	msg := e.Error
	if msg == "" {
		msg = fmt.Sprintf("HTTP error! status: %d", status)
	}

	var kind error
	switch status {
	case http.StatusUnauthorized:
		kind = common.ErrUnauthenticated
	case http.StatusForbidden:
		kind = common.ErrForbidden
	case http.StatusNotFound:
		kind = common.ErrNotFound
	case http.StatusConflict:
		kind = common.ErrDuplicateEntry
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = common.ErrValidation
	case http.StatusTooManyRequests:
		kind = common.ErrRateLimit
	}
	return &StatusError{StatusCode: status, Message: msg, kind: kind}
}

// envelope decodes the value stored under key in a {"key": value} body.
func envelope(raw map[string]json.RawMessage, key string, out any) error {
	v, ok := raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return fmt.Errorf("%w: %s missing from response", common.ErrNotFound, key)
	}
	if err := json.Unmarshal(v, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func requireSession(sess service.Session) error {
	if !sess.Valid() {
		return common.ErrUnauthenticated
	}
	return nil
}

func escape(id string) string {
	return url.PathEscape(id)
}

// GetProfile fetches the signed-in user's financial profile.
func (c *Client) GetProfile(ctx context.Context, sess service.Session) (*model.Profile, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if _, err := c.do(ctx, &sess, http.MethodGet, "/financial/profile/"+escape(sess.UserID), nil, &raw); err != nil {
		return nil, err
	}
	var wire api.Profile
	if err := envelope(raw, api.KeyProfile, &wire); err != nil {
		return nil, err
	}
	p := wire.Model()
	return &p, nil
}

// CreateProfile stores a new profile for the signed-in user.
func (c *Client) CreateProfile(ctx context.Context, sess service.Session, profile model.Profile) (*model.Profile, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	body := api.NewProfile(profile)
	body.ID = ""
	body.UserID = api.ID(sess.UserID)
	return c.sendProfile(ctx, sess, http.MethodPost, "/financial/profile", body)
}

// UpdateProfile replaces the profile with the given id.
func (c *Client) UpdateProfile(ctx context.Context, sess service.Session, id string, profile model.Profile) (*model.Profile, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	body := api.NewProfile(profile)
	body.ID = api.ID(id)
	body.UserID = api.ID(sess.UserID)
	return c.sendProfile(ctx, sess, http.MethodPut, "/financial/profile/"+escape(id), body)
}

func (c *Client) sendProfile(ctx context.Context, sess service.Session, method, path string, body api.Profile) (*model.Profile, error) {
	var raw map[string]json.RawMessage
	if _, err := c.do(ctx, &sess, method, path, body, &raw); err != nil {
		return nil, err
	}
	var wire api.Profile
	if err := envelope(raw, api.KeyProfile, &wire); err != nil {
		return nil, err
	}
	p := wire.Model()
	return &p, nil
}

// ListEntries fetches one collection in stored order.
func (c *Client) ListEntries(ctx context.Context, sess service.Session, kind model.EntryKind) ([]model.Entry, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	resource := api.Resource(kind)
	if resource == "" {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
	}

	var raw map[string]json.RawMessage
	if _, err := c.do(ctx, &sess, http.MethodGet, "/financial/"+resource+"/"+escape(sess.UserID), nil, &raw); err != nil {
		return nil, err
	}

	var wire []api.Entry
	if v, ok := raw[resource]; ok {
		if err := json.Unmarshal(v, &wire); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", resource, err)
		}
	}

	entries := make([]model.Entry, 0, len(wire))
	for _, w := range wire {
		entries = append(entries, w.Model(kind))
	}
	return entries, nil
}

// CreateEntry stores a new goal, expense or loan.
func (c *Client) CreateEntry(ctx context.Context, sess service.Session, entry model.Entry) (*model.Entry, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	resource := api.Resource(entry.Kind)
	if resource == "" {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownKind, entry.Kind)
	}
	body := api.NewEntry(entry)
	body.ID = ""
	body.UserID = api.ID(sess.UserID)
	return c.sendEntry(ctx, sess, entry.Kind, http.MethodPost, "/financial/"+resource, body)
}

// UpdateEntry replaces the entry with the given id.
func (c *Client) UpdateEntry(ctx context.Context, sess service.Session, id string, entry model.Entry) (*model.Entry, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	resource := api.Resource(entry.Kind)
	if resource == "" {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownKind, entry.Kind)
	}
	body := api.NewEntry(entry)
	body.ID = api.ID(id)
	body.UserID = api.ID(sess.UserID)
	return c.sendEntry(ctx, sess, entry.Kind, http.MethodPut, "/financial/"+resource+"/"+escape(id), body)
}

func (c *Client) sendEntry(ctx context.Context, sess service.Session, kind model.EntryKind, method, path string, body api.Entry) (*model.Entry, error) {
	var raw map[string]json.RawMessage
	if _, err := c.do(ctx, &sess, method, path, body, &raw); err != nil {
		return nil, err
	}
	var wire api.Entry
	if err := envelope(raw, api.Key(kind), &wire); err != nil {
		return nil, err
	}
	e := wire.Model(kind)
	return &e, nil
}

// DeleteEntry removes one entry.
func (c *Client) DeleteEntry(ctx context.Context, sess service.Session, kind model.EntryKind, id string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	resource := api.Resource(kind)
	if resource == "" {
		return fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
	}
	_, err := c.do(ctx, &sess, http.MethodDelete, "/financial/"+resource+"/"+escape(id), nil, nil)
	return err
}

// SaveScenario stores a named summary.
func (c *Client) SaveScenario(ctx context.Context, sess service.Session, scenario model.Scenario) (*model.Scenario, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	body := api.NewScenario(scenario)
	body.UserID = api.ID(sess.UserID)

	var raw map[string]json.RawMessage
	if _, err := c.do(ctx, &sess, http.MethodPost, "/financial/scenarios", body, &raw); err != nil {
		return nil, err
	}
	var wire api.Scenario
	if err := envelope(raw, api.KeyScenario, &wire); err != nil {
		return nil, err
	}
	s := wire.Model()
	return &s, nil
}

// ListScenarios returns saved scenarios, newest first.
func (c *Client) ListScenarios(ctx context.Context, sess service.Session) ([]model.Scenario, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if _, err := c.do(ctx, &sess, http.MethodGet, "/financial/scenarios/"+escape(sess.UserID), nil, &raw); err != nil {
		return nil, err
	}
	var wire []api.Scenario
	if v, ok := raw[api.KeyScenarios]; ok {
		if err := json.Unmarshal(v, &wire); err != nil {
			return nil, fmt.Errorf("failed to decode scenarios: %w", err)
		}
	}
	out := make([]model.Scenario, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.Model())
	}
	return out, nil
}

// Register creates an account and signs in.
func (c *Client) Register(ctx context.Context, reg service.Registration) (service.Session, *model.User, error) {
	return c.authenticate(ctx, "/register", reg)
}

// Login signs in with a username and password.
func (c *Client) Login(ctx context.Context, username, password string) (service.Session, *model.User, error) {
	return c.authenticate(ctx, "/login", api.Credentials{Username: username, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (service.Session, *model.User, error) {
	var out api.AuthResponse
	resp, err := c.do(ctx, nil, http.MethodPost, path, body, &out)
	if err != nil {
		return service.Session{}, nil, err
	}

	var token string
	for _, cookie := range resp.Cookies() {
		if cookie.Name == api.SessionCookie {
			token = cookie.Value
			break
		}
	}
	if token == "" {
		return service.Session{}, nil, errors.New("server did not return a session cookie")
	}

	user := out.User.Model()
	sess := service.Session{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: out.ExpiresAt,
	}
	c.logger.Info("Signed in", "user", user.Username)
	return sess, &user, nil
}

// Logout ends the session on the server.
func (c *Client) Logout(ctx context.Context, sess service.Session) error {
	_, err := c.do(ctx, &sess, http.MethodPost, "/logout", nil, nil)
	return err
}

// CurrentUser returns the signed-in account.
func (c *Client) CurrentUser(ctx context.Context, sess service.Session) (*model.User, error) {
	return c.sendUser(ctx, sess, http.MethodGet, nil)
}

// UpdateUser changes username or email.
func (c *Client) UpdateUser(ctx context.Context, sess service.Session, update service.UserUpdate) (*model.User, error) {
	return c.sendUser(ctx, sess, http.MethodPut, update)
}

func (c *Client) sendUser(ctx context.Context, sess service.Session, method string, body any) (*model.User, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if _, err := c.do(ctx, &sess, method, "/profile", body, &raw); err != nil {
		return nil, err
	}
	var wire api.User
	if err := envelope(raw, api.KeyUser, &wire); err != nil {
		return nil, err
	}
	u := wire.Model()
	return &u, nil
}

// ChangePassword replaces the account password.
func (c *Client) ChangePassword(ctx context.Context, sess service.Session, current, next string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	_, err := c.do(ctx, &sess, http.MethodPost, "/change-password",
		api.PasswordChange{CurrentPassword: current, NewPassword: next}, nil)
	return err
}

var (
	_ service.ProfileStore  = (*Client)(nil)
	_ service.ScenarioStore = (*Client)(nil)
	_ service.Authenticator = (*Client)(nil)
)
