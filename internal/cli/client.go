package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SecretHeader carries the owner secret on mutating requests
const SecretHeader = "X-Registration-Secret"

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	adminToken string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, adminToken string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		adminToken: adminToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetAdminToken updates the client's admin token
func (c *Client) SetAdminToken(token string) {
	c.adminToken = token
}

// APIError represents an error response from the API
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// IsAPIError reports whether err is an API error with the given code
func IsAPIError(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// request describes one API call
type request struct {
	method string
	path   string
	body   any
	secret string
	admin  bool
}

// do performs an HTTP request
func (c *Client) do(r request, result any) error {
	url := c.baseURL + r.path

	var bodyReader io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(r.method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if r.secret != "" {
		req.Header.Set(SecretHeader, r.secret)
	}
	if r.admin && c.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error responses
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			errResp.Error.Status = resp.StatusCode
			return &errResp.Error
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// ListRegistrations returns every registration, or one faction's
func (c *Client) ListRegistrations(faction string) ([]Registration, error) {
	path := "/api/registrations"
	if faction != "" {
		path += "/" + faction
	}
	var result []Registration
	err := c.do(request{method: http.MethodGet, path: path}, &result)
	return result, err
}

// CreateRegistration registers a player
func (c *Client) CreateRegistration(body CreateRegistration) (*CreatedRegistration, error) {
	var result CreatedRegistration
	if err := c.do(request{method: http.MethodPost, path: "/api/registrations", body: body}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateRegistration applies a partial update
func (c *Client) UpdateRegistration(id string, body map[string]any, secret string) (*Registration, error) {
	var result Registration
	err := c.do(request{
		method: http.MethodPut,
		path:   "/api/registrations/" + id,
		body:   body,
		secret: secret,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateFaction moves a registration to another faction
func (c *Client) UpdateFaction(id, faction, secret string) (*Registration, error) {
	var result Registration
	err := c.do(request{
		method: http.MethodPut,
		path:   "/api/registrations/" + id + "/faction",
		body:   map[string]string{"faction": faction},
		secret: secret,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteRegistration removes a registration
func (c *Client) DeleteRegistration(id, secret string) error {
	return c.do(request{method: http.MethodDelete, path: "/api/registrations/" + id, secret: secret}, nil)
}

// Leaderboard returns the ranked per-faction view
func (c *Client) Leaderboard() (Leaderboard, error) {
	var result Leaderboard
	err := c.do(request{method: http.MethodGet, path: "/api/leaderboard"}, &result)
	return result, err
}

// Health checks the server
func (c *Client) Health() (*HealthResult, error) {
	var result HealthResult
	if err := c.do(request{method: http.MethodGet, path: "/api/health"}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AdminLogin exchanges the admin password for a session token
func (c *Client) AdminLogin(password string) (*AdminToken, error) {
	var result AdminToken
	err := c.do(request{
		method: http.MethodPost,
		path:   "/api/admin/login",
		body:   map[string]string{"password": password},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AdminStats returns per-faction counts
func (c *Client) AdminStats() (*Stats, error) {
	var result Stats
	if err := c.do(request{method: http.MethodGet, path: "/api/admin/stats", admin: true}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
