// Package socialhttp is the JSON-over-HTTP implementation of social.Bridge.
package socialhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/playforge/login/pkg/auth"
	"github.com/playforge/login/pkg/kernel"
	"github.com/playforge/login/pkg/social"
)

// Client calls the social and profile services over HTTP
type Client struct {
	socialURL  string
	profileURL string
	http       *http.Client
}

// New creates a bridge client. The timeout bounds every outgoing call.
func New(socialURL, profileURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		socialURL:  socialURL,
		profileURL: profileURL,
		http:       &http.Client{Timeout: timeout},
	}
}

func (c *Client) post(ctx context.Context, base, method string, body map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("social: encode %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/"+method, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("social: build %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", social.ErrUnavailable, method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &social.CallError{Code: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &social.CallError{Code: resp.StatusCode, Body: "malformed response: " + err.Error()}
		}
	}
	return nil
}

// ImportSocial implements social.Bridge
func (c *Client) ImportSocial(ctx context.Context, gamespace kernel.GamespaceID, credential kernel.Credential, authResponse map[string]interface{}) error {
	return c.post(ctx, c.socialURL, "import_social", map[string]interface{}{
		"gamespace":  gamespace,
		"credential": credential.Type,
		"username":   credential.Username,
		"auth":       authResponse,
	}, nil)
}

// AttachAccount implements social.Bridge
func (c *Client) AttachAccount(ctx context.Context, gamespace kernel.GamespaceID, credential kernel.Credential, account kernel.AccountID, env auth.Env, fetchProfile bool) (social.Profile, error) {
	var profile social.Profile
	err := c.post(ctx, c.socialURL, "attach_account", map[string]interface{}{
		"gamespace":     gamespace,
		"credential":    credential.Type,
		"username":      credential.Username,
		"account":       account,
		"env":           env,
		"fetch_profile": fetchProfile,
	}, &profile)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile implements social.Bridge
func (c *Client) UpdateProfile(ctx context.Context, gamespace kernel.GamespaceID, account kernel.AccountID, fields social.Profile) error {
	return c.post(ctx, c.profileURL, "update_profile", map[string]interface{}{
		"gamespace_id": gamespace,
		"account_id":   account,
		"fields":       fields,
	}, nil)
}

// MassProfiles implements social.Bridge
func (c *Client) MassProfiles(ctx context.Context, gamespace kernel.GamespaceID, accounts []kernel.AccountID) (map[kernel.AccountID]social.Profile, error) {
	var out map[kernel.AccountID]social.Profile
	err := c.post(ctx, c.profileURL, "mass_profiles", map[string]interface{}{
		"gamespace": gamespace,
		"accounts":  accounts,
		"action":    "get_public",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
