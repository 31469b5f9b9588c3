package github

import (
	"fmt"
	"strings"
)

// PullRequest identifies a pull request by repository and number.
type PullRequest struct {
	Owner  string
	Repo   string
	Number int
}

// ParsePullRequest builds a PullRequest from "owner/repo" and a number.
func ParsePullRequest(repository string, number int) (PullRequest, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return PullRequest{}, fmt.Errorf("invalid repository format: %s (want owner/repo)", repository)
	}
	if number <= 0 {
		return PullRequest{}, fmt.Errorf("invalid pull request number: %d", number)
	}
	return PullRequest{Owner: parts[0], Repo: parts[1], Number: number}, nil
}

// FullName returns "owner/repo".
func (p PullRequest) FullName() string {
	return p.Owner + "/" + p.Repo
}

func (p PullRequest) String() string {
	return fmt.Sprintf("%s#%d", p.FullName(), p.Number)
}
