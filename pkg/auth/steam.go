package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/playforge/login/pkg/kernel"
)

const steamAuthURL = "https://api.steampowered.com/ISteamUserAuth/AuthenticateUserTicket/v1/"

// SteamAuthenticator handles the "steam" credential type by verifying a
// session ticket against the Steam Web API. The steamid becomes the username.
type SteamAuthenticator struct {
	apiKey  string
	authURL string
	client  *http.Client
}

// NewSteamAuthenticator creates a steam authenticator
func NewSteamAuthenticator(apiKey string) *SteamAuthenticator {
	return &SteamAuthenticator{
		apiKey:  apiKey,
		authURL: steamAuthURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Type returns "steam"
func (a *SteamAuthenticator) Type() string { return "steam" }

// SocialProfile returns true
func (a *SteamAuthenticator) SocialProfile() bool { return true }

// Authorize verifies the session ticket for the given app
func (a *SteamAuthenticator) Authorize(ctx context.Context, gamespace kernel.GamespaceID, args Args, env Env) (*Result, error) {
	ticket := args["ticket"]
	appID := args["app_id"]
	if ticket == "" || appID == "" {
		return nil, NewError("missing_argument", 0)
	}

	q := url.Values{}
	q.Set("key", a.apiKey)
	q.Set("appid", appID)
	q.Set("ticket", ticket)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.authURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, NewError("api_error", 0)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, NewError("api_error", http.StatusBadGateway)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, NewError("api_error", resp.StatusCode)
	}

	var payload struct {
		Response struct {
			Params struct {
				Result  string `json:"result"`
				SteamID string `json:"steamid"`
			} `json:"params"`
			Error *struct {
				ErrorCode int    `json:"errorcode"`
				ErrorDesc string `json:"errordesc"`
			} `json:"error"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewError("api_error", http.StatusBadGateway)
	}
	if payload.Response.Error != nil || payload.Response.Params.SteamID == "" {
		return nil, NewError("wrong_credentials", http.StatusForbidden)
	}

	return &Result{
		CredentialType: a.Type(),
		Username:       payload.Response.Params.SteamID,
		Response: map[string]interface{}{
			"steam_id": payload.Response.Params.SteamID,
			"app_id":   appID,
		},
		ImportSocial: true,
	}, nil
}
