package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"dashembed/auth"
	"dashembed/internal/config"
	"dashembed/server"
	"dashembed/sessions"
	"dashembed/token"
	"dashembed/users"
	fakeuserrepo "dashembed/users/repofake"

	"github.com/stretchr/testify/require"
)

const (
	testWorkspaceURL = "https://test.cloud.databricks.com"
	testDashboardID  = "dash-123"

	aliceEmail    = "alice@example.com"
	alicePassword = "alice-password"
	brunoEmail    = "bruno@example.com"
	brunoPassword = "bruno-password"
)

// fakeMinter records every mint request instead of calling upstream.
type fakeMinter struct {
	mu     sync.Mutex
	emails []string
	err    error
}

func (f *fakeMinter) Mint(_ context.Context, userEmail string) (*token.MintedToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.emails = append(f.emails, userEmail)
	return &token.MintedToken{
		AccessToken: "minted-for-" + userEmail,
		TokenType:   "Bearer",
		ExpiresIn:   3600,
		IssuedAt:    time.Now(),
	}, nil
}

func (f *fakeMinter) mintedEmails() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.emails...)
}

type testFixture struct {
	server *server.Server
	minter *fakeMinter
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	t.Setenv("INSTANCE_URL", testWorkspaceURL)
	t.Setenv("WORKSPACE_ID", "ws-1")
	t.Setenv("DASHBOARD_ID", testDashboardID)
	t.Setenv("DATABRICKS_WAREHOUSE_ID", "wh-1")
	t.Setenv("OAUTH_CLIENT_ID", "client-id")
	t.Setenv("OAUTH_SECRET", "client-secret")
	t.Setenv("SESSION_SECRET", "test-signing-secret")
	t.Setenv("ENV", "TEST")

	directory := fakeuserrepo.NewFakeDirectory()
	directory.Upsert(&users.User{ID: "u-alice", Name: "Alice", Email: aliceEmail, Department: "Sales", Password: alicePassword})
	directory.Upsert(&users.User{ID: "u-bruno", Name: "Bruno", Email: brunoEmail, Department: "Finance", Password: brunoPassword})

	cfg := config.New()
	authService, err := auth.NewService(auth.Repos{
		Directory: directory,
		Sessions:  sessions.NewInMemoryRepo(),
	}, cfg.GetSessionMaxAge())
	require.NoError(t, err)

	minter := &fakeMinter{}
	s, err := server.New(cfg, authService, minter, nil)
	require.NoError(t, err)

	return &testFixture{server: s, minter: minter}
}

func (f *testFixture) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *testFixture) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "embed_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("login response did not set a session cookie")
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLoginSuccess(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": aliceEmail, "password": alicePassword})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	require.Equal(t, aliceEmail, user["email"])
	require.NotContains(t, user, "password")
	require.NotContains(t, rec.Body.String(), alicePassword)
}

func TestLoginCookieAttributes(t *testing.T) {
	f := setupTestFixture(t)

	cookie := f.login(t, aliceEmail, alicePassword)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, "/", cookie.Path)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Positive(t, cookie.MaxAge)
	require.NotContains(t, cookie.Value, aliceEmail, "cookie payload carries no user data")
}

func TestLoginCrossOriginCookie(t *testing.T) {
	t.Setenv("DATABRICKS_APP_PORT", "8080")
	f := setupTestFixture(t)

	cookie := f.login(t, aliceEmail, alicePassword)
	require.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
	require.True(t, cookie.Secure)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	f := setupTestFixture(t)

	wrongPassword := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": aliceEmail, "password": "nope"})
	unknownEmail := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@example.com", "password": alicePassword})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	require.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String(), "no user enumeration")
	require.Equal(t, "Invalid email or password", decodeBody(t, wrongPassword)["error"])
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCurrentUser(t *testing.T) {
	f := setupTestFixture(t)
	cookie := f.login(t, aliceEmail, alicePassword)

	rec := f.do(t, http.MethodGet, "/api/auth/current-user", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, aliceEmail, decodeBody(t, rec)["email"])
}

func TestCurrentUserWithoutSession(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/api/auth/current-user", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Authentication required", decodeBody(t, rec)["error"])
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	cookie := f.login(t, aliceEmail, alicePassword)

	rec := f.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["success"])

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "embed_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared, "logout clears the session cookie")

	rec = f.do(t, http.MethodGet, "/api/auth/current-user", nil, cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code, "old cookie no longer resolves")
}

func TestLogoutWithoutSessionStillSucceeds(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestEmbedConfig(t *testing.T) {
	f := setupTestFixture(t)
	cookie := f.login(t, aliceEmail, alicePassword)

	rec := f.do(t, http.MethodGet, "/api/dashboard/embed-config", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, testWorkspaceURL, body["workspace_url"])
	require.Equal(t, "ws-1", body["workspace_id"])
	require.Equal(t, testDashboardID, body["dashboard_id"])
	require.Equal(t, "wh-1", body["warehouse_id"])
	require.Equal(t, "minted-for-"+aliceEmail, body["embed_token"])
	require.Equal(t, float64(3600), body["token_expires_in"])

	userContext := body["user_context"].(map[string]any)
	require.Equal(t, aliceEmail, userContext["email"])
	require.NotContains(t, userContext, "password")

	require.Equal(t, []string{aliceEmail}, f.minter.mintedEmails())
}

func TestEmbedConfigWithoutSessionNeverMints(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/api/dashboard/embed-config", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, f.minter.mintedEmails(), "gate rejects before any upstream call")
}

func TestEmbedConfigWithTamperedCookieNeverMints(t *testing.T) {
	f := setupTestFixture(t)
	cookie := f.login(t, aliceEmail, alicePassword)
	cookie.Value = cookie.Value + "tampered"

	rec := f.do(t, http.MethodGet, "/api/dashboard/embed-config", nil, cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, f.minter.mintedEmails())
}

func TestEmbedConfigBindsTokenToSessionUser(t *testing.T) {
	f := setupTestFixture(t)

	// Mixed-case login still binds the canonical directory email
	aliceCookie := f.login(t, "  ALICE@Example.COM ", alicePassword)
	brunoCookie := f.login(t, brunoEmail, brunoPassword)

	rec := f.do(t, http.MethodGet, "/api/dashboard/embed-config", nil, aliceCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "minted-for-"+aliceEmail, decodeBody(t, rec)["embed_token"])

	rec = f.do(t, http.MethodGet, "/api/dashboard/embed-config", nil, brunoCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "minted-for-"+brunoEmail, decodeBody(t, rec)["embed_token"])

	require.Equal(t, []string{aliceEmail, brunoEmail}, f.minter.mintedEmails())
}

func TestEmbedConfigMintFailure(t *testing.T) {
	f := setupTestFixture(t)
	cookie := f.login(t, aliceEmail, alicePassword)
	f.minter.err = fmt.Errorf("token request failed with status 502")

	rec := f.do(t, http.MethodGet, "/api/dashboard/embed-config", nil, cookie)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "token request failed with status 502", decodeBody(t, rec)["error"])
}

func TestHealth(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "healthy", body["status"])
	_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
	require.NoError(t, err)
}

func TestConfigCheckReportsNoSecrets(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/api/config-check", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, testWorkspaceURL, body["INSTANCE_URL"])
	require.Equal(t, testDashboardID, body["DASHBOARD_ID"])
	require.Equal(t, true, body["OAUTH_CLIENT_ID_set"])
	require.Equal(t, true, body["OAUTH_SECRET_set"])
	require.NotContains(t, rec.Body.String(), "client-secret")
}

func TestConfigCheckMissingValues(t *testing.T) {
	f := setupTestFixture(t)
	t.Setenv("INSTANCE_URL", "")
	t.Setenv("OAUTH_SECRET", "")

	rec := f.do(t, http.MethodGet, "/api/config-check", nil)
	body := decodeBody(t, rec)
	require.Equal(t, "(not set)", body["INSTANCE_URL"])
	require.Equal(t, false, body["OAUTH_SECRET_set"])
}

func TestCorsPreflight(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCorsDisallowedOrigin(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorsHostedAppOrigin(t *testing.T) {
	t.Setenv("DATABRICKS_APP_PORT", "8080")
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://my-app.databricksapps.com")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "https://my-app.databricksapps.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
