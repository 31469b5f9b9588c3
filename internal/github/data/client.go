package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gh "github.com/cexll/review-checklist/internal/github"
)

// DefaultEndpoint is the public GitHub GraphQL endpoint.
const DefaultEndpoint = "https://api.github.com/graphql"

// Client is a thin GitHub GraphQL client. Every request carries a token
// obtained from the auth provider for the target repository.
type Client struct {
	httpClient   *http.Client
	endpoint     string
	authProvider gh.AuthProvider
}

// NewClient creates a GraphQL client using the provided auth provider.
func NewClient(auth gh.AuthProvider) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 20 * time.Second},
		endpoint:     DefaultEndpoint,
		authProvider: auth,
	}
}

// WithEndpoint points the client at another GraphQL endpoint (GHES, tests).
// An empty endpoint leaves the client unchanged.
func (c *Client) WithEndpoint(endpoint string) *Client {
	if endpoint != "" {
		c.endpoint = endpoint
	}
	return c
}

// GraphQLRequest represents a GraphQL request body.
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Do executes a GraphQL POST for the given repository ("owner/repo") and
// decodes the data member into out. GraphQL errors are returned as errors.
func (c *Client) Do(ctx context.Context, repo, query string, variables map[string]any, out any) error {
	if repo == "" {
		return fmt.Errorf("repo is required (owner/repo)")
	}

	token, err := c.authProvider.GetInstallationToken(repo)
	if err != nil {
		return fmt.Errorf("failed to get installation token: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(GraphQLRequest{Query: query, Variables: variables}); err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graphql http error: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql status %d: %s", resp.StatusCode, string(body))
	}

	var wrapper struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return fmt.Errorf("decode graphql envelope: %w", err)
	}
	if len(wrapper.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", wrapper.Errors[0].Message)
	}
	if out == nil {
		return nil
	}
	if len(wrapper.Data) == 0 {
		wrapper.Data = json.RawMessage("null")
	}
	if err := json.Unmarshal(wrapper.Data, out); err != nil {
		return fmt.Errorf("decode graphql data: %w", err)
	}
	return nil
}
