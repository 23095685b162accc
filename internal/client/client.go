// Package client is an HTTP client for the remoteconfig admin API, used by
// the rcadmin CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is an HTTP client for the remoteconfig API
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Config is the wire shape of a configuration as returned by the API.
type Config struct {
	ID          string          `json:"id"`
	GameID      string          `json:"gameId"`
	Key         string          `json:"key"`
	Environment string          `json:"environment"`
	DataType    string          `json:"dataType"`
	Value       json.RawMessage `json:"value"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Rule is the wire shape of a rule as returned by the API.
type Rule struct {
	ID            string          `json:"id"`
	ConfigID      string          `json:"configId"`
	Priority      int             `json:"priority"`
	OverrideValue json.RawMessage `json:"overrideValue"`
	Enabled       bool            `json:"enabled"`
	Platform      *string         `json:"platform,omitempty"`
	Country       *string         `json:"country,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Resolution is the wire shape of a resolved config value.
type Resolution struct {
	GameID      string          `json:"gameId"`
	Key         string          `json:"key"`
	Environment string          `json:"environment"`
	DataType    string          `json:"dataType"`
	Value       json.RawMessage `json:"value"`
	Reason      string          `json:"reason"`
	MatchedRule string          `json:"matchedRule,omitempty"`
}

// UpsertConfig creates or updates a configuration.
func (c *Client) UpsertConfig(ctx context.Context, gameID, key, env, dataType string, value json.RawMessage) (*Config, error) {
	body := map[string]any{
		"gameId":   gameID,
		"key":      key,
		"dataType": dataType,
		"value":    value,
	}
	if env != "" {
		body["environment"] = env
	}

	var cfg Config
	if err := c.do(ctx, http.MethodPost, "/v1/configs", nil, body, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DeleteConfig removes a configuration and its rules.
func (c *Client) DeleteConfig(ctx context.Context, gameID, key, env string) error {
	return c.do(ctx, http.MethodDelete, "/v1/configs/"+gameID+"/"+key, envQuery(env), nil, nil)
}

// ListConfigs retrieves all configurations for a game.
func (c *Client) ListConfigs(ctx context.Context, gameID, env string) ([]Config, error) {
	var resp struct {
		Configs []Config `json:"configs"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/configs/"+gameID, envQuery(env), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Configs, nil
}

// ListRules retrieves all rules for a configuration.
func (c *Client) ListRules(ctx context.Context, gameID, key, env string) ([]Rule, error) {
	var resp struct {
		Rules []Rule `json:"rules"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/configs/"+gameID+"/"+key+"/rules", envQuery(env), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rules, nil
}

// CreateRule creates a rule from a raw JSON body (as accepted by the API).
func (c *Client) CreateRule(ctx context.Context, gameID, key, env string, body json.RawMessage) (*Rule, error) {
	var rule Rule
	if err := c.do(ctx, http.MethodPost, "/v1/configs/"+gameID+"/"+key+"/rules", envQuery(env), body, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// UpdateRule updates a rule from a raw JSON body.
func (c *Client) UpdateRule(ctx context.Context, gameID, key, env, ruleID string, body json.RawMessage) (*Rule, error) {
	var rule Rule
	if err := c.do(ctx, http.MethodPut, "/v1/configs/"+gameID+"/"+key+"/rules/"+ruleID, envQuery(env), body, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// DeleteRule removes a rule.
func (c *Client) DeleteRule(ctx context.Context, gameID, key, env, ruleID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/configs/"+gameID+"/"+key+"/rules/"+ruleID, envQuery(env), nil, nil)
}

// Resolve fetches the value a client with the given attributes would receive.
func (c *Client) Resolve(ctx context.Context, gameID, key, env string, attrs map[string]string) (*Resolution, error) {
	q := envQuery(env)
	if q == nil {
		q = url.Values{}
	}
	for k, v := range attrs {
		if v != "" {
			q.Set(k, v)
		}
	}

	var res Resolution
	if err := c.do(ctx, http.MethodGet, "/v1/configs/"+gameID+"/"+key, q, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func envQuery(env string) url.Values {
	if env == "" {
		return nil
	}
	q := url.Values{}
	q.Set("env", env)
	return q
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
