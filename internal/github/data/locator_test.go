package data

import (
	"context"
	"strings"
	"testing"

	"github.com/cexll/review-checklist/internal/checklist"
	ghtest "github.com/cexll/review-checklist/internal/github/testing"
)

var generated = checklist.Marker + "\n\n#### Review\n\n- [x] Check style\n\n"

func TestFindGeneratedComment_BodyWins(t *testing.T) {
	fake, client, pr := newFake(t)
	fake.Body = generated
	fake.Comments = []ghtest.Comment{{ID: "C1", Body: generated}}

	loc, err := FindGeneratedComment(context.Background(), client, pr)
	if err != nil {
		t.Fatalf("FindGeneratedComment() error: %v", err)
	}
	body, ok := loc.(PullRequestBody)
	if !ok {
		t.Fatalf("location = %#v, want PullRequestBody", loc)
	}
	if body.PullRequestID != fake.PullRequestID || body.PriorBody() != generated {
		t.Fatalf("unexpected location: %+v", body)
	}
	if n := fake.Count("Comments"); n != 0 {
		t.Fatalf("Comments requests = %d, want 0", n)
	}
}

func TestFindGeneratedComment_FirstMatchWins(t *testing.T) {
	fake, client, pr := newFake(t)
	fake.Body = "Fixes a bug"
	fake.PageSize = 2
	fake.Comments = []ghtest.Comment{
		{ID: "A", Body: "LGTM"},
		{ID: "B", Body: "nit"},
		{ID: "C1", Body: generated},
		{ID: "C2", Body: generated},
		{ID: "D", Body: "later"},
		{ID: "E", Body: "later"},
	}

	loc, err := FindGeneratedComment(context.Background(), client, pr)
	if err != nil {
		t.Fatalf("FindGeneratedComment() error: %v", err)
	}
	c, ok := loc.(IssueComment)
	if !ok {
		t.Fatalf("location = %#v, want IssueComment", loc)
	}
	if c.CommentID != "C1" || c.PullRequestID != fake.PullRequestID {
		t.Fatalf("unexpected location: %+v", c)
	}
	// C1 is on the second page; the third page must never be requested
	if n := fake.Count("Comments"); n != 2 {
		t.Fatalf("Comments requests = %d, want 2", n)
	}
}

func TestFindGeneratedComment_NotFound(t *testing.T) {
	fake, client, pr := newFake(t)
	fake.PageSize = 1
	fake.Comments = []ghtest.Comment{
		{ID: "A", Body: "hello " + checklist.Marker},
		{ID: "B", Body: ""},
	}

	loc, err := FindGeneratedComment(context.Background(), client, pr)
	if err != nil {
		t.Fatalf("FindGeneratedComment() error: %v", err)
	}
	if loc != nil {
		t.Fatalf("location = %#v, want nil", loc)
	}
	if n := fake.Count("Comments"); n != 2 {
		t.Fatalf("Comments requests = %d, want 2", n)
	}
}

func TestFindGeneratedComment_NoComments(t *testing.T) {
	_, client, pr := newFake(t)

	loc, err := FindGeneratedComment(context.Background(), client, pr)
	if err != nil || loc != nil {
		t.Fatalf("FindGeneratedComment() = %#v, %v; want nil, nil", loc, err)
	}
}

func TestFindGeneratedComment_Errors(t *testing.T) {
	t.Run("missing pull request", func(t *testing.T) {
		fake, client, pr := newFake(t)
		fake.MissingPullRequest = true
		_, err := FindGeneratedComment(context.Background(), client, pr)
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Fatalf("error = %v, want not found", err)
		}
	})

	t.Run("body query fails", func(t *testing.T) {
		fake, client, pr := newFake(t)
		fake.FailOperations = map[string]int{"PullRequestBody": 500}
		if _, err := FindGeneratedComment(context.Background(), client, pr); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("comment page fails mid-scan", func(t *testing.T) {
		fake, client, pr := newFake(t)
		fake.PageSize = 1
		fake.Comments = []ghtest.Comment{{ID: "A", Body: "x"}, {ID: "B", Body: generated}}
		fake.FailOnCall = map[string]int{"Comments": 2}
		loc, err := FindGeneratedComment(context.Background(), client, pr)
		if err == nil || loc != nil {
			t.Fatalf("FindGeneratedComment() = %#v, %v; want nil and an error", loc, err)
		}
	})
}

func TestMutations(t *testing.T) {
	fake, client, pr := newFake(t)
	fake.Comments = []ghtest.Comment{{ID: "C1", Body: "old"}}

	if err := UpdateIssueComment(context.Background(), client, pr.FullName(), "C1", "new"); err != nil {
		t.Fatalf("UpdateIssueComment() error: %v", err)
	}
	if err := UpdatePullRequestBody(context.Background(), client, pr.FullName(), fake.PullRequestID, "pr body"); err != nil {
		t.Fatalf("UpdatePullRequestBody() error: %v", err)
	}
	if err := UpdateIssueComment(context.Background(), client, pr.FullName(), "missing", "x"); err == nil {
		t.Fatalf("expected error for unknown comment")
	}

	writes := fake.Writes()
	if len(writes) != 2 {
		t.Fatalf("writes = %+v, want 2", writes)
	}
	if writes[0] != (ghtest.Write{Operation: "UpdateIssueComment", TargetID: "C1", Body: "new"}) {
		t.Errorf("writes[0] = %+v", writes[0])
	}
	if writes[1] != (ghtest.Write{Operation: "UpdatePullRequest", TargetID: fake.PullRequestID, Body: "pr body"}) {
		t.Errorf("writes[1] = %+v", writes[1])
	}
	if got := fake.CurrentBody(); got != "pr body" {
		t.Errorf("Body = %q", got)
	}
	if got, _ := fake.CommentBody("C1"); got != "new" {
		t.Errorf("comment body = %q", got)
	}
}
