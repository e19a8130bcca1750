package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Config describes a GoTrue-compatible identity provider API. Endpoints
// are derived from BaseURL: /authorize, /token, /user, /logout.
type Config struct {
	// BaseURL is the root of the auth API, e.g. https://id.example.com/auth/v1.
	BaseURL string

	// Issuer, when set, enables OIDC discovery and id_token verification
	// on code exchange.
	Issuer string

	ClientID     string
	ClientSecret string
	RedirectURL  string

	// HTTPClient overrides the client used for user and logout calls.
	HTTPClient *http.Client
}

// Client talks to a GoTrue-style identity provider. OAuth legs go through
// x/oauth2; the user and logout endpoints are plain JSON over HTTP.
type Client struct {
	baseURL     string
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
	httpClient  *http.Client
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.BaseURL == "" || cfg.ClientID == "" || cfg.RedirectURL == "" {
		return nil, errors.New("identity provider config missing required fields")
	}

	base := strings.TrimRight(cfg.BaseURL, "/")

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  base + "/authorize",
			TokenURL: base + "/token",
		},
		Scopes: []string{oidc.ScopeOpenID, "profile", "email"},
	}

	var verifier *oidc.IDTokenVerifier
	if cfg.Issuer != "" {
		oidcProvider, err := oidc.NewProvider(ctx, cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("failed to init oidc provider: %w", err)
		}
		verifier = oidcProvider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Provider calls are awaited synchronously on the request path;
		// a hung provider must not hang the request forever.
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		baseURL:     base,
		oauthConfig: oauthCfg,
		verifier:    verifier,
		httpClient:  httpClient,
	}, nil
}

// AuthCodeURL builds the authorization URL with PKCE parameters.
func (c *Client) AuthCodeURL(state string, codeChallenge string) string {
	return c.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (c *Client) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*Session, error) {

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	if c.verifier != nil {
		rawIDToken, ok := token.Extra("id_token").(string)
		if !ok || rawIDToken == "" {
			return nil, errors.New("provider did not return id_token")
		}
		if _, err := c.verifier.Verify(ctx, rawIDToken); err != nil {
			return nil, fmt.Errorf("id_token verification failed: %w", err)
		}
	}

	user, err := c.GetUser(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch user after exchange: %w", err)
	}

	return &Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
		User:         user,
	}, nil
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusNotFound:
		// Token no longer identifies anyone.
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("get user: %s", apiError(resp))
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

func (c *Client) UpdateMetadata(
	ctx context.Context,
	accessToken string,
	fields map[string]any,
) (*User, error) {

	body, err := json.Marshal(map[string]any{"data": fields})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPut,
		c.baseURL+"/user",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("update metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("update metadata: %s", apiError(resp))
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/logout",
		nil,
	)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sign out: %s", apiError(resp))
	}
	return nil
}

// apiError extracts the provider's error message from a failed response.
func apiError(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Msg         string `json:"msg"`
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		switch {
		case payload.Msg != "":
			return payload.Msg
		case payload.Description != "":
			return payload.Description
		case payload.Error != "":
			return payload.Error
		}
	}
	return resp.Status
}
