package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/playforge/login/pkg/kernel"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleAuthenticator handles the "google" credential type by exchanging an
// OAuth2 authorization code and resolving the stable subject id as username.
type GoogleAuthenticator struct {
	conf        *oauth2.Config
	userinfoURL string
}

// NewGoogleAuthenticator creates a google authenticator
func NewGoogleAuthenticator(clientID, clientSecret string) *GoogleAuthenticator {
	return &GoogleAuthenticator{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "profile"},
		},
		userinfoURL: googleUserinfoURL,
	}
}

// Type returns "google"
func (a *GoogleAuthenticator) Type() string { return "google" }

// SocialProfile returns true: google logins carry a profile to import
func (a *GoogleAuthenticator) SocialProfile() bool { return true }

// Authorize exchanges the code and fetches the subject id
func (a *GoogleAuthenticator) Authorize(ctx context.Context, gamespace kernel.GamespaceID, args Args, env Env) (*Result, error) {
	code := args["code"]
	if code == "" {
		return nil, NewError("missing_argument", 0)
	}

	opts := []oauth2.AuthCodeOption{}
	if redirect := args["redirect_uri"]; redirect != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", redirect))
	}

	tok, err := a.conf.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, NewError("wrong_credentials", http.StatusForbidden)
	}

	resp, err := a.conf.Client(ctx, tok).Get(a.userinfoURL)
	if err != nil {
		return nil, NewError("api_error", http.StatusBadGateway)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, NewError("api_error", resp.StatusCode)
	}

	var userinfo struct {
		Sub     string `json:"sub"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userinfo); err != nil || userinfo.Sub == "" {
		return nil, NewError("api_error", http.StatusBadGateway)
	}

	return &Result{
		CredentialType: a.Type(),
		Username:       userinfo.Sub,
		Response: map[string]interface{}{
			"access_token": tok.AccessToken,
			"expires_at":   tok.Expiry.Unix(),
			"name":         userinfo.Name,
			"avatar":       userinfo.Picture,
		},
		ImportSocial: true,
	}, nil
}
