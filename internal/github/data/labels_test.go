package data

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	gh "github.com/cexll/review-checklist/internal/github"
	ghtest "github.com/cexll/review-checklist/internal/github/testing"
)

func newFake(t *testing.T) (*ghtest.FakeGitHub, *Client, gh.PullRequest) {
	t.Helper()
	fake := ghtest.NewFakeGitHub("o", "r", 7)
	t.Cleanup(fake.Close)
	client := NewClient(gh.StaticTokenAuth{Token: "t"}).WithEndpoint(fake.GraphQLURL())
	return fake, client, gh.PullRequest{Owner: "o", Repo: "r", Number: 7}
}

func TestCollectLabels_SinglePage(t *testing.T) {
	fake, client, pr := newFake(t)
	fake.Labels = []string{"Review", "DB"}

	labels, err := CollectLabels(context.Background(), client, pr)
	if err != nil {
		t.Fatalf("CollectLabels() error: %v", err)
	}
	if !reflect.DeepEqual(labels, []string{"Review", "DB"}) {
		t.Fatalf("labels = %v", labels)
	}
	if n := fake.Count("Labels"); n != 1 {
		t.Fatalf("Labels requests = %d, want 1", n)
	}
}

func TestCollectLabels_MultiplePagesKeepServerOrder(t *testing.T) {
	fake, client, pr := newFake(t)
	fake.PageSize = 2
	fake.Labels = []string{"z", "a", "m", "b", "c"}

	labels, err := CollectLabels(context.Background(), client, pr)
	if err != nil {
		t.Fatalf("CollectLabels() error: %v", err)
	}
	if !reflect.DeepEqual(labels, fake.Labels) {
		t.Fatalf("labels = %v, want %v", labels, fake.Labels)
	}
	if n := fake.Count("Labels"); n != 3 {
		t.Fatalf("Labels requests = %d, want 3", n)
	}
}

func TestCollectLabels_TrailingEmptyPageTerminates(t *testing.T) {
	fake, client, pr := newFake(t)
	fake.PageSize = 2
	fake.Labels = []string{"a", "b", "c", "d"}
	fake.TrailingEmptyLabelPage = true

	labels, err := CollectLabels(context.Background(), client, pr)
	if err != nil {
		t.Fatalf("CollectLabels() error: %v", err)
	}
	if len(labels) != 4 {
		t.Fatalf("labels = %v", labels)
	}
	// two full pages plus the empty one that ends the loop
	if n := fake.Count("Labels"); n != 3 {
		t.Fatalf("Labels requests = %d, want 3", n)
	}
}

func TestCollectLabels_NoLabels(t *testing.T) {
	fake, client, pr := newFake(t)
	fake.TrailingEmptyLabelPage = true

	labels, err := CollectLabels(context.Background(), client, pr)
	if err != nil {
		t.Fatalf("CollectLabels() error: %v", err)
	}
	if len(labels) != 0 {
		t.Fatalf("labels = %v, want none", labels)
	}
}

func TestCollectLabels_FailureDiscardsPartialResult(t *testing.T) {
	fake, client, pr := newFake(t)
	fake.PageSize = 1
	fake.Labels = []string{"a", "b", "c"}
	fake.FailOnCall = map[string]int{"Labels": 2}

	labels, err := CollectLabels(context.Background(), client, pr)
	if err == nil {
		t.Fatalf("expected error")
	}
	if labels != nil {
		t.Fatalf("labels = %v, want nil on failure", labels)
	}
	if n := fake.Count("Labels"); n != 2 {
		t.Fatalf("Labels requests = %d, want 2", n)
	}
}

func TestCollectLabels_MissingPullRequest(t *testing.T) {
	fake, client, pr := newFake(t)
	fake.MissingPullRequest = true

	_, err := CollectLabels(context.Background(), client, pr)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestListLabels_IsLazy(t *testing.T) {
	fake, client, pr := newFake(t)
	fake.PageSize = 1
	for i := range 10 {
		fake.Labels = append(fake.Labels, fmt.Sprintf("l%d", i))
	}

	for name, err := range ListLabels(context.Background(), client, pr) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if name == "l1" {
			break
		}
	}
	if n := fake.Count("Labels"); n != 2 {
		t.Fatalf("Labels requests = %d, want 2", n)
	}
}
