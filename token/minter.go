// Package token mints user-scoped bearer tokens for the embedded dashboard.
//
// Minting is a three-step exchange against the workspace API:
//  1. a service token via the client-credentials grant (scope "all-apis"),
//  2. a per-user tokeninfo lookup for the published dashboard, keyed by the
//     user's email as external viewer id and external value,
//  3. a second client-credentials call echoing the tokeninfo parameters,
//     which yields a token whose data access is restricted to that email.
//
// The double hop lets the workspace issue a token pre-filtered to one
// external identity without that identity ever holding OAuth credentials.
// Tokens are minted fresh on every request and never cached.
package token

import (
	"context"
	goerrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"dashembed/internal/config"
	"dashembed/internal/errors"
	"dashembed/internal/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	oidcTokenPath     = "/oidc/v1/token"
	tokenInfoPathFmt  = "/api/2.0/lakeview/dashboards/%s/published/tokeninfo"
	serviceTokenScope = "all-apis"

	// DefaultExpiresIn is assumed when the upstream omits expires_in.
	// Absence does not indicate an error upstream.
	DefaultExpiresIn = 3600

	// DefaultTimeout bounds each upstream call.
	DefaultTimeout = 10 * time.Second
)

// MintedToken is a freshly minted user-scoped bearer token. The access
// token is a secret and must never be logged.
type MintedToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
}

// Minter performs the three-step exchange. The three calls are strictly
// sequential (each depends on the previous response) and none of them
// retries; the first failure fails the whole mint.
type Minter struct {
	cfg     config.WorkspaceConfig
	client  *http.Client
	metrics *metrics.Metrics
	nowTime func() time.Time
}

// MinterOption defines a function type to modify the Minter instance.
type MinterOption func(*Minter)

// WithHTTPClient overrides the upstream HTTP client (primarily for testing
// and for wiring the configured timeout).
func WithHTTPClient(client *http.Client) MinterOption {
	return func(m *Minter) {
		m.client = client
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) MinterOption {
	return func(m *Minter) {
		m.nowTime = nowFunc
	}
}

// WithMetrics attaches mint outcome/latency metrics.
func WithMetrics(m *metrics.Metrics) MinterOption {
	return func(mi *Minter) {
		mi.metrics = m
	}
}

func NewMinter(cfg config.WorkspaceConfig, options ...MinterOption) *Minter {
	m := &Minter{
		cfg:     cfg,
		client:  &http.Client{Timeout: DefaultTimeout},
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Mint runs the three-step exchange for the given user email. The email
// must be the authenticated session's email; callers never pass
// request-supplied identity here.
func (m *Minter) Mint(ctx context.Context, userEmail string) (*MintedToken, error) {
	start := m.nowTime()
	defer func() { m.metrics.ObserveMintLatency(m.nowTime().Sub(start)) }()

	if err := m.validateConfig(); err != nil {
		m.metrics.IncrementMint("config_invalid")
		return nil, err
	}
	userEmail = strings.TrimSpace(userEmail)

	serviceToken, err := m.serviceToken(ctx)
	if err != nil {
		m.metrics.IncrementMint(mintResult(err, "oidc_failed"))
		return nil, err
	}

	info, err := m.tokenInfo(ctx, serviceToken, userEmail)
	if err != nil {
		m.metrics.IncrementMint(mintResult(err, "tokeninfo_failed"))
		return nil, err
	}

	minted, err := m.scopedToken(ctx, info)
	if err != nil {
		m.metrics.IncrementMint(mintResult(err, "scoped_failed"))
		return nil, err
	}

	m.metrics.IncrementMint("success")
	return minted, nil
}

// validateConfig fails fast before any network call when a required
// workspace setting is missing.
func (m *Minter) validateConfig() error {
	if m.cfg.GetWorkspaceURL() == "" || m.cfg.GetOAuthClientID() == "" ||
		m.cfg.GetOAuthClientSecret() == "" || m.cfg.GetDashboardID() == "" {
		return fmt.Errorf("%w: set INSTANCE_URL, OAUTH_CLIENT_ID, OAUTH_SECRET and DASHBOARD_ID", errors.ErrConfiguration)
	}
	return nil
}

// serviceToken performs the client-credentials grant for a workspace-level
// service token (step 1 of the exchange).
func (m *Minter) serviceToken(ctx context.Context) (string, error) {
	cc := clientcredentials.Config{
		ClientID:     m.cfg.GetOAuthClientID(),
		ClientSecret: m.cfg.GetOAuthClientSecret(),
		TokenURL:     m.cfg.GetWorkspaceURL() + oidcTokenPath,
		Scopes:       []string{serviceTokenScope},
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	// Route the exchange through our bounded-timeout client. A fresh token
	// source per call means no token is ever reused across requests.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.client)
	tok, err := cc.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if goerrors.As(err, &retrieveErr) {
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			log.Error().Int("status", status).Str("body", string(retrieveErr.Body)).Msg("service token request rejected")
			return "", fmt.Errorf("%w: status %d: %s", errors.ErrUpstreamAuth, status, retrieveErr.Body)
		}
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", errors.ErrUpstreamTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", errors.ErrUpstreamAuth, err)
	}
	return tok.AccessToken, nil
}

// scopedResponse is the subset of the final token response we consume.
type scopedResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   *int   `json:"expires_in"`
}

func mintResult(err error, stepResult string) string {
	if errors.Is(err, errors.ErrUpstreamTimeout) {
		return "timeout"
	}
	return stepResult
}

func isTimeout(err error) bool {
	if goerrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return goerrors.As(err, &netErr) && netErr.Timeout()
}
