package executor

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/cexll/review-checklist/internal/checklist"
	"github.com/cexll/review-checklist/internal/config"
	"github.com/cexll/review-checklist/internal/definition"
	gh "github.com/cexll/review-checklist/internal/github"
	"github.com/cexll/review-checklist/internal/github/comment"
	"github.com/cexll/review-checklist/internal/github/data"
	"github.com/google/go-github/v66/github"
)

// Actions reported in addition to the ones Upsert performs.
const (
	// ActionSkipped: no checklist applies and nothing was generated before.
	ActionSkipped comment.Action = "skipped"
	// ActionUnchanged: the generated body is already up to date.
	ActionUnchanged comment.Action = "unchanged"
)

// SourceFunc picks the definitions source for a run. The REST client is
// authenticated for the repository being synced.
type SourceFunc func(rest *github.Client) definition.Source

// FileSources reads definitions from the local checkout.
func FileSources(path string) SourceFunc {
	return func(*github.Client) definition.Source {
		return definition.FileSource{Path: path}
	}
}

// RepoSources reads definitions from the repository default branch.
func RepoSources(path string) SourceFunc {
	return func(rest *github.Client) definition.Source {
		return definition.RepoSource{Client: rest, Path: path}
	}
}

// Sources returns the SourceFunc for a configured kind
// (definition.SourceFile or definition.SourceRepo).
func Sources(kind, path string) SourceFunc {
	if kind == definition.SourceRepo {
		return RepoSources(path)
	}
	return FileSources(path)
}

// Result describes one reconciliation run.
type Result struct {
	Action   comment.Action
	Location data.Location // prior location, nil when none existed
	Stats    checklist.Stats
	Body     string
}

// Executor reconciles the generated checklist of pull requests.
type Executor struct {
	auth       gh.AuthProvider
	source     SourceFunc
	apiURL     string
	graphqlURL string
	httpClient *http.Client
}

// Option configures an Executor.
type Option func(*Executor)

// WithAPIURL sets the REST base URL (GHES, tests).
func WithAPIURL(u string) Option { return func(e *Executor) { e.apiURL = u } }

// WithGraphQLURL sets the GraphQL endpoint (GHES, tests).
func WithGraphQLURL(u string) Option { return func(e *Executor) { e.graphqlURL = u } }

// WithHTTPClient sets the HTTP client used for REST calls.
func WithHTTPClient(c *http.Client) Option { return func(e *Executor) { e.httpClient = c } }

// New creates an executor.
func New(auth gh.AuthProvider, source SourceFunc, opts ...Option) *Executor {
	e := &Executor{auth: auth, source: source}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync brings the generated checklist of pr up to date. Nothing is written
// unless every read (labels, prior checklist, definitions) succeeded.
func (e *Executor) Sync(ctx context.Context, pr gh.PullRequest) (*Result, error) {
	log.Printf("[Checklist] Syncing %s", pr)

	token, err := e.auth.GetInstallationToken(pr.FullName())
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	rest, err := e.restClient(token.Token)
	if err != nil {
		return nil, err
	}
	// One token per run; the GraphQL client must not re-authenticate per page.
	graphql := data.NewClient(gh.StaticTokenAuth{Token: token.Token}).WithEndpoint(e.graphqlURL)

	defs, err := e.source(rest).Load(ctx, pr.FullName())
	if err != nil {
		return nil, fmt.Errorf("load checklist definitions: %w", err)
	}

	labels, err := data.CollectLabels(ctx, graphql, pr)
	if err != nil {
		return nil, err
	}
	log.Printf("[Checklist] %s has %d label(s): %s", pr, len(labels), strings.Join(labels, ", "))
	desired := defs.Build(labels)

	loc, err := data.FindGeneratedComment(ctx, graphql, pr)
	if err != nil {
		return nil, err
	}

	prior := checklist.State{}
	if loc != nil {
		prior, err = checklist.Parse(loc.PriorBody())
		if err != nil {
			return nil, fmt.Errorf("parse generated checklist of %s: %w", pr, err)
		}
	}

	doc := checklist.Merge(desired, prior)
	body := checklist.Render(doc)
	result := &Result{Location: loc, Stats: checklist.Summarize(doc), Body: body}

	switch {
	case loc == nil && len(doc.Sections) == 0:
		log.Printf("[Checklist] No checklist applies to %s, nothing to do", pr)
		result.Action = ActionSkipped
		return result, nil
	case loc != nil && loc.PriorBody() == body:
		log.Printf("[Checklist] Checklist of %s is up to date (%s)", pr, result.Stats)
		result.Action = ActionUnchanged
		return result, nil
	}

	writer := comment.NewGitHubWriter(rest, graphql, pr)
	action, err := comment.Upsert(ctx, writer, loc, body)
	if err != nil {
		return nil, err
	}
	result.Action = action
	log.Printf("[Checklist] %s checklist of %s (%s)", action, pr, result.Stats)
	return result, nil
}

func (e *Executor) restClient(token string) (*github.Client, error) {
	client := github.NewClient(e.httpClient).WithAuthToken(token)
	if e.apiURL == "" {
		return client, nil
	}
	base, err := url.Parse(strings.TrimSuffix(e.apiURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", e.apiURL, err)
	}
	client.BaseURL = base
	return client, nil
}

// NewFromConfig wires an executor from loaded configuration.
func NewFromConfig(cfg *config.Config) *Executor {
	return New(
		cfg.AuthProvider(),
		Sources(cfg.ChecklistSource, cfg.ChecklistConfig),
		WithAPIURL(cfg.GitHubAPIURL),
		WithGraphQLURL(cfg.GitHubGraphQLURL),
	)
}
