package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	types "github.com/estol/auth-service/internal/domain"
)

// OAuthClient is one provider's half of the authorization-code flow: build
// the redirect URL, then turn the callback code into a profile. Each client
// reads its CLIENT_ID / CLIENT_SECRET pair from process configuration.
type OAuthClient interface {
	Provider() string
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*ExternalProfile, error)
}

// OAuthConfig holds one provider's credentials and callback location.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	TokenType   string `json:"token_type"`
}

func exchangeCode(ctx context.Context, httpClient *http.Client, tokenURL string, cfg OAuthConfig, code string) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)
	form.Set("redirect_uri", cfg.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("token exchange failed: %s", res.Status)
	}

	var tok tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// ----- google -----

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"
)

type googleOAuthClient struct {
	cfg        OAuthConfig
	httpClient *http.Client
	verifier   GoogleVerifier
}

// NewGoogleOAuthClient authenticates callbacks by verifying the id_token
// returned from the exchange rather than trusting an unauthenticated
// userinfo fetch.
func NewGoogleOAuthClient(cfg OAuthConfig, httpClient *http.Client, verifier GoogleVerifier) (OAuthClient, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &googleOAuthClient{cfg: cfg, httpClient: httpClient, verifier: verifier}, nil
}

func (c *googleOAuthClient) Provider() string { return types.ProviderGoogle }

func (c *googleOAuthClient) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", c.cfg.RedirectURL)
	q.Set("response_type", "code")
	q.Set("scope", "openid email profile")
	q.Set("state", state)
	return googleAuthURL + "?" + q.Encode()
}

func (c *googleOAuthClient) FetchProfile(ctx context.Context, code string) (*ExternalProfile, error) {
	tok, err := exchangeCode(ctx, c.httpClient, googleTokenURL, c.cfg, code)
	if err != nil {
		return nil, err
	}
	if tok.IDToken == "" {
		return nil, fmt.Errorf("google token response missing id_token")
	}
	return c.verifier.Verify(ctx, tok.IDToken)
}

// ----- microsoft -----

const (
	microsoftAuthURL  = "https://login.microsoftonline.com/common/oauth2/v2.0/authorize"
	microsoftTokenURL = "https://login.microsoftonline.com/common/oauth2/v2.0/token"
	microsoftMeURL    = "https://graph.microsoft.com/v1.0/me"
)

type microsoftOAuthClient struct {
	cfg        OAuthConfig
	httpClient *http.Client
}

func NewMicrosoftOAuthClient(cfg OAuthConfig, httpClient *http.Client) (OAuthClient, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("MICROSOFT_CLIENT_ID and MICROSOFT_CLIENT_SECRET are required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &microsoftOAuthClient{cfg: cfg, httpClient: httpClient}, nil
}

func (c *microsoftOAuthClient) Provider() string { return types.ProviderMicrosoft }

func (c *microsoftOAuthClient) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", c.cfg.RedirectURL)
	q.Set("response_type", "code")
	q.Set("scope", "openid email profile User.Read")
	q.Set("state", state)
	return microsoftAuthURL + "?" + q.Encode()
}

func (c *microsoftOAuthClient) FetchProfile(ctx context.Context, code string) (*ExternalProfile, error) {
	tok, err := exchangeCode(ctx, c.httpClient, microsoftTokenURL, c.cfg, code)
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("microsoft token response missing access_token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, microsoftMeURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("graph profile request failed: %s", res.Status)
	}

	var me struct {
		ID                string `json:"id"`
		DisplayName       string `json:"displayName"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := json.NewDecoder(res.Body).Decode(&me); err != nil {
		return nil, err
	}
	if me.ID == "" {
		return nil, fmt.Errorf("graph profile missing id")
	}

	email := me.Mail
	if email == "" {
		email = me.UserPrincipalName
	}
	return &ExternalProfile{
		Provider:    types.ProviderMicrosoft,
		Sub:         me.ID,
		Email:       email,
		DisplayName: me.DisplayName,
	}, nil
}
