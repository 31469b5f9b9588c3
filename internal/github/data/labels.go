package data

import (
	"context"
	"fmt"
	"iter"

	gh "github.com/cexll/review-checklist/internal/github"
)

type labelsQueryResponse struct {
	Repository struct {
		PullRequest *struct {
			Labels struct {
				Nodes []struct {
					Name string `json:"name"`
				} `json:"nodes"`
				PageInfo PageInfo `json:"pageInfo"`
			} `json:"labels"`
		} `json:"pullRequest"`
	} `json:"repository"`
}

// ListLabels yields the label names of a pull request in server order,
// fetching one page at a time. A failed page ends the sequence with its error.
func ListLabels(ctx context.Context, c *Client, pr gh.PullRequest) iter.Seq2[string, error] {
	fetch := func(ctx context.Context, after *string) (Page[string], error) {
		var resp labelsQueryResponse
		err := c.Do(ctx, pr.FullName(), labelsQuery, map[string]any{
			"owner":  pr.Owner,
			"repo":   pr.Repo,
			"number": pr.Number,
			"first":  pageSize,
			"after":  after,
		}, &resp)
		if err != nil {
			return Page[string]{}, fmt.Errorf("fetch labels of %s: %w", pr, err)
		}
		if resp.Repository.PullRequest == nil {
			return Page[string]{}, fmt.Errorf("pull request %s not found", pr)
		}
		labels := resp.Repository.PullRequest.Labels
		page := Page[string]{PageInfo: labels.PageInfo}
		for _, n := range labels.Nodes {
			page.Nodes = append(page.Nodes, n.Name)
		}
		return page, nil
	}

	return func(yield func(string, error) bool) {
		for page, err := range Pages(ctx, fetch) {
			if err != nil {
				yield("", err)
				return
			}
			for _, name := range page.Nodes {
				if !yield(name, nil) {
					return
				}
			}
		}
	}
}

// CollectLabels drains ListLabels. Any page error fails the whole listing.
func CollectLabels(ctx context.Context, c *Client, pr gh.PullRequest) ([]string, error) {
	var labels []string
	for name, err := range ListLabels(ctx, c, pr) {
		if err != nil {
			return nil, err
		}
		labels = append(labels, name)
	}
	return labels, nil
}

const labelsQuery = `query Labels($owner: String!, $repo: String!, $number: Int!, $first: Int!, $after: String) {
  repository(owner: $owner, name: $repo) {
    pullRequest(number: $number) {
      labels(first: $first, after: $after) {
        nodes { name }
        pageInfo { endCursor hasNextPage }
      }
    }
  }
}`
