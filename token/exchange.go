package token

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"dashembed/internal/errors"
	"dashembed/internal/utils"

	"github.com/rs/zerolog/log"
)

// tokenInfo asks the workspace which authorization parameters a scoped
// token for this dashboard and external identity needs (step 2).
func (m *Minter) tokenInfo(ctx context.Context, serviceToken, userEmail string) (map[string]json.RawMessage, error) {
	infoURL := m.cfg.GetWorkspaceURL() + fmt.Sprintf(tokenInfoPathFmt, url.PathEscape(m.cfg.GetDashboardID()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, infoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrUpstreamTokenInfo, err)
	}

	// Both parameters carry the same email: this is what binds the
	// dashboard's row-level filtering to the logged-in identity.
	query := url.Values{}
	query.Set("external_viewer_id", userEmail)
	query.Set("external_value", userEmail)
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Authorization", "Bearer "+serviceToken)

	status, body, err := m.do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", errors.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", errors.ErrUpstreamTokenInfo, err)
	}
	if status != http.StatusOK {
		log.Error().Int("status", status).Str("body", string(body)).Msg("tokeninfo request rejected")
		return nil, fmt.Errorf("%w: status %d: %s", errors.ErrUpstreamTokenInfo, status, body)
	}

	var info map[string]json.RawMessage
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in response: %v", errors.ErrUpstreamTokenInfo, err)
	}
	return info, nil
}

// scopedToken exchanges the tokeninfo parameter set for the user-scoped
// bearer token (step 3). The tokeninfo fields are echoed back as form
// parameters, with authorization_details re-serialized as a JSON string
// and the grant type forced to client_credentials.
func (m *Minter) scopedToken(ctx context.Context, info map[string]json.RawMessage) (*MintedToken, error) {
	form := url.Values{}
	for key, value := range info {
		if key == "authorization_details" {
			continue
		}
		form.Set(key, formValue(value))
	}
	form.Set("grant_type", "client_credentials")
	if details, ok := info["authorization_details"]; ok {
		form.Set("authorization_details", string(details))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.GetWorkspaceURL()+oidcTokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrUpstreamScopedToken, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(m.cfg.GetOAuthClientID(), m.cfg.GetOAuthClientSecret())

	status, body, err := m.do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", errors.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", errors.ErrUpstreamScopedToken, err)
	}
	if status != http.StatusOK {
		log.Error().Int("status", status).Str("body", string(body)).Msg("scoped token request rejected")
		return nil, fmt.Errorf("%w: status %d: %s", errors.ErrUpstreamScopedToken, status, body)
	}

	var resp scopedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in response: %v", errors.ErrUpstreamScopedToken, err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: response missing access_token", errors.ErrUpstreamScopedToken)
	}

	return &MintedToken{
		AccessToken: resp.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   utils.ValueOr(resp.ExpiresIn, DefaultExpiresIn),
		IssuedAt:    m.nowTime(),
	}, nil
}

func (m *Minter) do(req *http.Request) (int, []byte, error) {
	resp, err := m.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// formValue renders a tokeninfo field as a form parameter value: JSON
// strings are sent unquoted, any other type keeps its JSON literal form.
func formValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
