package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/upb/llm-control-plane/dashboard/config"
)

// ErrNotConfigured is returned when the hosted UI settings are missing
var ErrNotConfigured = errors.New("cognito not configured")

// tokenResponse is the OAuth2 token endpoint response from Cognito
type tokenResponse struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// CognitoTokenExchanger exchanges authorization codes for tokens via Cognito
type CognitoTokenExchanger struct {
	cfg        config.CognitoConfig
	httpClient *http.Client
}

// NewCognitoTokenExchanger creates a new token exchanger. A nil client gets
// a 10 second timeout.
func NewCognitoTokenExchanger(cfg config.CognitoConfig, client *http.Client) *CognitoTokenExchanger {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &CognitoTokenExchanger{
		cfg:        cfg,
		httpClient: client,
	}
}

// ExchangeCode exchanges an authorization code for the ID token
func (e *CognitoTokenExchanger) ExchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	if !e.cfg.Configured() {
		return "", ErrNotConfigured
	}

	tokenURL := strings.TrimSuffix(e.cfg.Domain, "/") + "/oauth2/token"
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"client_id":    {e.cfg.ClientID},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if e.cfg.ClientSecret != "" {
		req.SetBasicAuth(e.cfg.ClientID, e.cfg.ClientSecret)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}

	if tokenResp.IDToken == "" {
		return "", errors.New("no id_token in response")
	}

	return tokenResp.IDToken, nil
}
