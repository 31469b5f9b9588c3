package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/cexll/review-checklist/internal/definition"
	"github.com/cexll/review-checklist/internal/github"
)

// Config holds all configuration for the checklist binaries
type Config struct {
	// Server settings
	Port                int
	GitHubWebhookSecret string

	// Authentication: a plain token wins over GitHub App credentials
	GitHubToken      string
	GitHubAppID      string
	GitHubPrivateKey string

	// Endpoints (empty means github.com)
	GitHubAPIURL     string
	GitHubGraphQLURL string

	// Target pull request for one-shot runs
	Repository string
	PRNumber   int

	// Checklist definitions
	ChecklistConfig string
	ChecklistSource string // "file" or "repo"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnvInt("PORT", 8000),
		GitHubWebhookSecret: os.Getenv("GITHUB_WEBHOOK_SECRET"),
		GitHubToken:         os.Getenv("GITHUB_TOKEN"),
		GitHubAppID:         os.Getenv("GITHUB_APP_ID"),
		GitHubPrivateKey:    normalizePrivateKey(os.Getenv("GITHUB_PRIVATE_KEY")),
		GitHubAPIURL:        os.Getenv("GITHUB_API_URL"),
		GitHubGraphQLURL:    os.Getenv("GITHUB_GRAPHQL_URL"),
		Repository:          os.Getenv("GITHUB_REPOSITORY"),
		PRNumber:            getEnvInt("PR_NUMBER", 0),
		ChecklistConfig:     getEnv("CHECKLIST_CONFIG", definition.DefaultPath),
		ChecklistSource:     strings.ToLower(getEnv("CHECKLIST_SOURCE", definition.SourceFile)),
	}

	if cfg.PRNumber == 0 {
		if path := os.Getenv("GITHUB_EVENT_PATH"); path != "" {
			n, err := pullRequestNumberFromEvent(path)
			if err != nil {
				log.Printf("Warning: cannot read pull request number from %s: %v", path, err)
			}
			cfg.PRNumber = n
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.ChecklistSource {
	case definition.SourceFile, definition.SourceRepo:
	default:
		return fmt.Errorf("invalid CHECKLIST_SOURCE: %s (must be '%s' or '%s')", c.ChecklistSource, definition.SourceFile, definition.SourceRepo)
	}
	if c.Port <= 0 {
		return fmt.Errorf("PORT must be greater than 0")
	}
	return c.validateGitHubCredentials()
}

func (c *Config) validateGitHubCredentials() error {
	if c.GitHubToken != "" {
		return nil
	}
	if c.GitHubAppID == "" || c.GitHubPrivateKey == "" {
		return fmt.Errorf("GITHUB_TOKEN or GITHUB_APP_ID and GITHUB_PRIVATE_KEY are required")
	}
	return nil
}

// ValidateRun checks the settings needed to sync a single pull request.
func (c *Config) ValidateRun() error {
	if c.Repository == "" {
		return fmt.Errorf("GITHUB_REPOSITORY is required")
	}
	if c.PRNumber <= 0 {
		return fmt.Errorf("PR_NUMBER is required (or a pull_request event in GITHUB_EVENT_PATH)")
	}
	return nil
}

// ValidateServer checks the settings needed by the webhook server.
func (c *Config) ValidateServer() error {
	if c.GitHubWebhookSecret == "" {
		return fmt.Errorf("GITHUB_WEBHOOK_SECRET is required")
	}
	return nil
}

// AuthProvider returns the token source selected by the configuration.
func (c *Config) AuthProvider() github.AuthProvider {
	if c.GitHubToken != "" {
		return github.StaticTokenAuth{Token: c.GitHubToken}
	}
	return &github.AppAuth{
		AppID:      c.GitHubAppID,
		PrivateKey: c.GitHubPrivateKey,
		APIBaseURL: c.GitHubAPIURL,
	}
}

func pullRequestNumberFromEvent(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var event struct {
		Number      int `json:"number"`
		PullRequest struct {
			Number int `json:"number"`
		} `json:"pull_request"`
	}
	if err := json.Unmarshal(raw, &event); err != nil {
		return 0, fmt.Errorf("decode event payload: %w", err)
	}
	if event.PullRequest.Number != 0 {
		return event.PullRequest.Number, nil
	}
	return event.Number, nil
}

func normalizePrivateKey(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "\"") && strings.HasSuffix(trimmed, "\"") {
		trimmed = strings.TrimPrefix(trimmed, "\"")
		trimmed = strings.TrimSuffix(trimmed, "\"")
	}
	if strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'") {
		trimmed = strings.TrimPrefix(trimmed, "'")
		trimmed = strings.TrimSuffix(trimmed, "'")
	}

	trimmed = strings.ReplaceAll(trimmed, "\r\n", "\n")
	trimmed = strings.ReplaceAll(trimmed, "\r", "\n")
	if strings.Contains(trimmed, "\\n") {
		trimmed = strings.ReplaceAll(trimmed, "\\r", "")
		trimmed = strings.ReplaceAll(trimmed, "\\n", "\n")
	}

	return trimmed
}

// getEnv gets environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets environment variable as int with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
