// Package staffdir fetches the engineer roster from the internal staff
// directory service.
package staffdir

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotaops/rota/auth"
	"github.com/rotaops/rota/connectors"
)

const membersPath = "/api/v1/members"

type Client struct {
	baseURL string
	team    string
}

// Fetch retrieves the roster for the configured team. The base URL option
// is required; the team option narrows the result to one on-call team.
func (c *Client) Fetch(authClient *auth.ClientCred, opts ...connectors.Option) (connectors.IdentityResponse, error) {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("staffdir: base URL not set")
	}

	endpoint := c.baseURL + membersPath
	if c.team != "" {
		endpoint += "?team=" + url.QueryEscape(c.team)
	}
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if authClient != nil {
		if err := authClient.SetAuthHeader(req); err != nil {
			return nil, fmt.Errorf("failed to set auth header: %w", err)
		}
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var dirResponse Response
	if err := json.Unmarshal(body, &dirResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &dirResponse, nil
}
