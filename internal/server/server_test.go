package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/life-sheet/internal/api"
	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/remote"
	"github.com/Veraticus/life-sheet/internal/server"
	"github.com/Veraticus/life-sheet/internal/service"
	"github.com/Veraticus/life-sheet/internal/testutil"
	"github.com/Veraticus/life-sheet/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestServer(t *testing.T) (*httptest.Server, *remote.Client) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	srv, err := server.New(db.Storage, server.Options{
		Secret:        []byte(testSecret),
		Mode:          gin.TestMode,
		AllowedOrigin: "http://localhost:5173",
	}, nil)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, remote.NewClient(ts.URL+"/api", 5*time.Second, nil)
}

func register(t *testing.T, client *remote.Client, username string) service.Session {
	t.Helper()
	sess, _, err := client.Register(context.Background(), service.Registration{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	return sess
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := server.New(testutil.SetupTestDB(t).Storage, server.Options{}, nil)
	require.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestAuthFlow(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	sess := register(t, client, "asha")
	assert.NotEmpty(t, sess.Token)
	assert.True(t, sess.Valid())

	_, _, err := client.Register(ctx, service.Registration{Username: "asha", Password: "another password"})
	require.ErrorIs(t, err, common.ErrDuplicateEntry)

	_, _, err = client.Register(ctx, service.Registration{Username: "x", Password: "short"})
	require.ErrorIs(t, err, common.ErrValidation)

	user, err := client.CurrentUser(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "asha", user.Username)
	assert.Equal(t, sess.UserID, user.ID)

	user, err = client.UpdateUser(ctx, sess, service.UserUpdate{Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)

	_, _, err = client.Login(ctx, "asha", "wrong password")
	require.ErrorIs(t, err, common.ErrUnauthenticated)

	err = client.ChangePassword(ctx, sess, "wrong password", "brand new secret")
	require.ErrorIs(t, err, common.ErrValidation)
	require.NoError(t, client.ChangePassword(ctx, sess, "correct horse", "brand new secret"))

	again, _, err := client.Login(ctx, "asha", "brand new secret")
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, again.UserID)

	require.NoError(t, client.Logout(ctx, again))
}

func TestFinancialRoundTrip(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()
	sess := register(t, client, "asha")

	wf := workflow.New(client, workflow.Options{})
	require.NoError(t, wf.Load(ctx, sess))
	assert.Empty(t, wf.Snapshot().Profile.ID)

	for field, value := range map[string]string{
		"age":                            "30",
		"current_annual_gross_income":    "1200000",
		"work_tenure_years":              "25",
		"total_asset_gross_market_value": "5000000",
	} {
		_, err := wf.SetField(field, value)
		require.NoError(t, err)
	}
	_, err := wf.Add(model.KindGoal, model.NewGoal("House", 5_000_000))
	require.NoError(t, err)
	_, err = wf.Add(model.KindExpense, model.NewExpense("Living", 600_000))
	require.NoError(t, err)
	_, err = wf.Add(model.KindLoan, model.NewLoan("Car loan", 400_000, model.FloatPtr(12_000)))
	require.NoError(t, err)
	_, err = wf.AddDefault(model.KindLoan)
	require.NoError(t, err)

	result, err := wf.Save(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, workflow.SaveResult{Created: 4, Skipped: 1}, result)
	before, _ := wf.Summary()

	reloaded := workflow.New(client, workflow.Options{})
	require.NoError(t, reloaded.Load(ctx, sess))
	snap := reloaded.Snapshot()

	require.Len(t, snap.Loans, 1)
	assert.Equal(t, "Car loan", snap.Loans[0].Description)
	assert.InDelta(t, 12_000, snap.Loans[0].EMIValue(), 0.001)
	require.Len(t, snap.Goals, 1)
	assert.Equal(t, "House", snap.Goals[0].Description)
	assert.Equal(t, 25, model.IntValue(snap.Profile.WorkTenureYears))

	after, ok := reloaded.Summary()
	require.True(t, ok)
	assert.Equal(t, before, after)

	key, err := reloaded.Plan().KeyAt(model.KindGoal, 0)
	require.NoError(t, err)
	_, err = reloaded.Delete(ctx, sess, model.KindGoal, key)
	require.NoError(t, err)

	goals, err := client.ListEntries(ctx, sess, model.KindGoal)
	require.NoError(t, err)
	assert.Empty(t, goals)

	_, err = reloaded.SaveScenario(ctx, sess, client, "baseline")
	require.NoError(t, err)
	scenarios, err := client.ListScenarios(ctx, sess)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "baseline", scenarios[0].Name)
}

func TestProfileValidation(t *testing.T) {
	_, client := newTestServer(t)
	sess := register(t, client, "asha")

	p := model.NewProfile()
	p.Age = model.IntPtr(30)
	_, err := client.CreateProfile(context.Background(), sess, p)
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = client.CreateEntry(context.Background(), sess, model.NewLoan("", 0, nil))
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestOtherUsersDataIsHidden(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()
	owner := register(t, client, "owner")
	intruder := register(t, client, "intruder")

	goal, err := client.CreateEntry(ctx, owner, model.NewGoal("House", 1))
	require.NoError(t, err)

	spoofed := intruder
	spoofed.UserID = owner.UserID
	_, err = client.ListEntries(ctx, spoofed, model.KindGoal)
	require.ErrorIs(t, err, common.ErrNotFound)

	require.ErrorIs(t, client.DeleteEntry(ctx, intruder, model.KindGoal, goal.ID), common.ErrNotFound)
	_, err = client.UpdateEntry(ctx, intruder, goal.ID, model.NewGoal("Mine now", 1))
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUnauthenticatedRequests(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		method string
		path   string
		cookie string
	}{
		{method: http.MethodGet, path: "/api/profile"},
		{method: http.MethodGet, path: "/api/financial/goals/1"},
		{method: http.MethodPost, path: "/api/financial/loans"},
		{method: http.MethodGet, path: "/api/financial/profile/1", cookie: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, strings.NewReader("{}"))
			require.NoError(t, err)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: api.SessionCookie, Value: tt.cookie})
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			var body api.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "Not authenticated", body.Error)
		})
	}
}

func TestSessionTravelsInCookieOnly(t *testing.T) {
	ts, client := newTestServer(t)
	sess := register(t, client, "cookie_only")

	get := func(t *testing.T, attach func(*http.Request)) int {
		t.Helper()
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/profile", nil)
		require.NoError(t, err)
		attach(req)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, get(t, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+sess.Token)
	}))
	assert.Equal(t, http.StatusOK, get(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: api.SessionCookie, Value: sess.Token})
	}))
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	req.Header.Set("Origin", "http://evil.example")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	srv, err := server.New(testutil.SetupTestDB(t).Storage, server.Options{
		Secret: []byte(testSecret),
		Mode:   gin.TestMode,
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0", nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
