// Package bridge keeps the external chat/video provider's user registry in
// sync with the directory and mints per-user access tokens for it.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserUpsert is the provider-side representation of a directory entry.
type UserUpsert struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Upserter is the delivery half of the bridge; the sync worker and tests
// depend on this rather than on the HTTP client.
type Upserter interface {
	UpsertUser(ctx context.Context, u UserUpsert) error
}

// Client talks to the provider's server-side REST API. Requests authenticate
// with a short-lived server token signed with the API secret.
type Client struct {
	apiKey    string
	apiSecret []byte
	baseURL   string
	httpc     *http.Client
}

func NewClient(apiKey, apiSecret, baseURL string) *Client {
	return &Client{
		apiKey:    apiKey,
		apiSecret: []byte(apiSecret),
		baseURL:   baseURL,
		httpc:     &http.Client{Timeout: 10 * time.Second},
	}
}

// MintToken returns an opaque bearer token the client SDK uses to connect
// the given user to the provider's chat and video services.
func (c *Client) MintToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
	})
	signed, err := token.SignedString(c.apiSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign provider token: %w", err)
	}
	return signed, nil
}

// serverToken authenticates this backend (not an end user) to the provider.
func (c *Client) serverToken() (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"server": true,
		"iat":    time.Now().Unix(),
	})
	return token.SignedString(c.apiSecret)
}

// UpsertUser creates or updates the user in the provider registry. The call
// is idempotent on the provider side.
func (c *Client) UpsertUser(ctx context.Context, u UserUpsert) error {
	payload, err := json.Marshal(map[string]any{
		"users": map[string]UserUpsert{u.ID: u},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal upsert payload: %w", err)
	}

	url := fmt.Sprintf("%s/users?api_key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build upsert request: %w", err)
	}

	auth, err := c.serverToken()
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("provider upsert failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider upsert returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
