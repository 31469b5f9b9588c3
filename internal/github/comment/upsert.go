package comment

import (
	"context"
	"fmt"

	"github.com/cexll/review-checklist/internal/github/data"
)

// Action is the write Upsert performed.
type Action string

const (
	ActionCreated        Action = "created"
	ActionUpdatedComment Action = "updated_comment"
	ActionUpdatedBody    Action = "updated_body"
)

// Writer performs the three remote writes the upsert can choose between.
type Writer interface {
	UpdateComment(ctx context.Context, commentID, body string) error
	UpdatePullRequestBody(ctx context.Context, pullRequestID, body string) error
	CreateComment(ctx context.Context, body string) error
}

// Upsert writes body to loc with exactly one call on w. A nil loc creates a
// new comment; the pull request body is only written when it already holds
// the generated checklist. Errors are returned as-is, without retrying.
func Upsert(ctx context.Context, w Writer, loc data.Location, body string) (Action, error) {
	switch l := loc.(type) {
	case nil:
		return ActionCreated, w.CreateComment(ctx, body)
	case data.IssueComment:
		return ActionUpdatedComment, w.UpdateComment(ctx, l.CommentID, body)
	case data.PullRequestBody:
		return ActionUpdatedBody, w.UpdatePullRequestBody(ctx, l.PullRequestID, body)
	default:
		return "", fmt.Errorf("unsupported location %T", loc)
	}
}
