package definition

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v66/github"
)

// RepoSource fetches the definitions file from a repository's default branch.
// Used where no checkout is available (webhook and MCP servers).
type RepoSource struct {
	Client *github.Client
	Path   string
	Ref    string // empty means the default branch
}

// Load implements Source.
func (s RepoSource) Load(ctx context.Context, repo string) (*Definitions, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("invalid repository format: %s (want owner/repo)", repo)
	}
	path := s.Path
	if path == "" {
		path = DefaultPath
	}

	var opts *github.RepositoryContentGetOptions
	if s.Ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: s.Ref}
	}
	file, _, _, err := s.Client.Repositories.GetContents(ctx, owner, name, path, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", path, repo, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%s in %s is a directory", path, repo)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return Decode(strings.NewReader(content))
}
