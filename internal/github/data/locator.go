package data

import (
	"context"
	"fmt"

	"github.com/cexll/review-checklist/internal/checklist"
	gh "github.com/cexll/review-checklist/internal/github"
)

// Location is where the generated checklist of a pull request currently lives.
// It is either PullRequestBody or IssueComment; a nil Location means none exists.
type Location interface {
	// PriorBody returns the body stored at the location.
	PriorBody() string
	location()
}

// PullRequestBody means the pull request description itself is generated.
type PullRequestBody struct {
	PullRequestID string
	Body          string
}

// IssueComment is a regular pull request comment holding the checklist.
type IssueComment struct {
	PullRequestID string
	CommentID     string
	Body          string
}

func (l PullRequestBody) PriorBody() string { return l.Body }
func (l IssueComment) PriorBody() string    { return l.Body }

func (PullRequestBody) location() {}
func (IssueComment) location()    {}

// Comment is a pull request comment node.
type Comment struct {
	ID          string `json:"id"`
	Body        string `json:"body"`
	IsMinimized bool   `json:"isMinimized"`
	Author      struct {
		Login string `json:"login"`
	} `json:"author"`
}

type pullRequestBodyResponse struct {
	Repository struct {
		PullRequest *struct {
			ID   string `json:"id"`
			Body string `json:"body"`
		} `json:"pullRequest"`
	} `json:"repository"`
}

type commentsQueryResponse struct {
	Repository struct {
		PullRequest *struct {
			Comments struct {
				Nodes    []Comment `json:"nodes"`
				PageInfo PageInfo  `json:"pageInfo"`
			} `json:"comments"`
		} `json:"pullRequest"`
	} `json:"repository"`
}

// FindGeneratedComment locates the generated checklist of pr. A generated
// pull request body wins over any comment; otherwise the first generated
// comment in server order is returned and no later pages are fetched.
// It returns a nil Location when nothing generated exists.
func FindGeneratedComment(ctx context.Context, c *Client, pr gh.PullRequest) (Location, error) {
	var prResp pullRequestBodyResponse
	err := c.Do(ctx, pr.FullName(), pullRequestBodyQuery, map[string]any{
		"owner":  pr.Owner,
		"repo":   pr.Repo,
		"number": pr.Number,
	}, &prResp)
	if err != nil {
		return nil, fmt.Errorf("fetch PR %s: %w", pr, err)
	}
	if prResp.Repository.PullRequest == nil {
		return nil, fmt.Errorf("pull request %s not found", pr)
	}

	pullRequestID := prResp.Repository.PullRequest.ID
	if body := prResp.Repository.PullRequest.Body; checklist.IsGenerated(body) {
		return PullRequestBody{PullRequestID: pullRequestID, Body: body}, nil
	}

	for page, err := range Pages(ctx, commentsFetcher(c, pr)) {
		if err != nil {
			return nil, err
		}
		for _, node := range page.Nodes {
			if checklist.IsGenerated(node.Body) {
				return IssueComment{
					PullRequestID: pullRequestID,
					CommentID:     node.ID,
					Body:          node.Body,
				}, nil
			}
		}
	}
	return nil, nil
}

func commentsFetcher(c *Client, pr gh.PullRequest) FetchFunc[Comment] {
	return func(ctx context.Context, after *string) (Page[Comment], error) {
		var resp commentsQueryResponse
		err := c.Do(ctx, pr.FullName(), commentsQuery, map[string]any{
			"owner":  pr.Owner,
			"repo":   pr.Repo,
			"number": pr.Number,
			"first":  pageSize,
			"after":  after,
		}, &resp)
		if err != nil {
			return Page[Comment]{}, fmt.Errorf("fetch comments of %s: %w", pr, err)
		}
		if resp.Repository.PullRequest == nil {
			return Page[Comment]{}, fmt.Errorf("pull request %s not found", pr)
		}
		comments := resp.Repository.PullRequest.Comments
		return Page[Comment]{Nodes: comments.Nodes, PageInfo: comments.PageInfo}, nil
	}
}

const pullRequestBodyQuery = `query PullRequestBody($owner: String!, $repo: String!, $number: Int!) {
  repository(owner: $owner, name: $repo) {
    pullRequest(number: $number) {
      id
      body
    }
  }
}`

const commentsQuery = `query Comments($owner: String!, $repo: String!, $number: Int!, $first: Int!, $after: String) {
  repository(owner: $owner, name: $repo) {
    pullRequest(number: $number) {
      comments(first: $first, after: $after) {
        nodes {
          id
          author { login }
          isMinimized
          body
        }
        pageInfo { endCursor hasNextPage }
      }
    }
  }
}`
