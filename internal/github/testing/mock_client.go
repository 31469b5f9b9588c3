package testing

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"sync"
)

// Comment is a pull request comment held by FakeGitHub.
type Comment struct {
	ID   string
	Body string
}

// Write records one mutation received by FakeGitHub.
type Write struct {
	Operation string // UpdateIssueComment, UpdatePullRequest or CreateComment
	TargetID  string
	Body      string
}

// FakeGitHub serves the subset of the GitHub GraphQL and REST APIs used by the
// checklist sync for a single pull request, backed by in-memory state:
//
//   - POST /graphql: Labels, PullRequestBody, Comments queries and the
//     UpdateIssueComment, UpdatePullRequest mutations
//   - POST /repos/{owner}/{repo}/issues/{number}/comments
//   - GET  /repos/{owner}/{repo}/contents/{path} (serves Definitions)
//
// Close must be called to stop the server.
type FakeGitHub struct {
	Owner         string
	Repo          string
	Number        int
	PullRequestID string
	Body          string
	Labels        []string
	Comments      []Comment
	Definitions   string

	// PageSize overrides the requested page size when > 0.
	PageSize int
	// TrailingEmptyLabelPage makes the last label page report hasNextPage=true
	// and the page after it return no nodes.
	TrailingEmptyLabelPage bool
	// MissingPullRequest answers every query with a null pullRequest.
	MissingPullRequest bool
	// FailOperations maps an operation name to the HTTP status it fails with.
	FailOperations map[string]int
	// FailOnCall fails the n-th (1-based) call of an operation name with 500.
	FailOnCall map[string]int

	mu         sync.Mutex
	operations []string
	writes     []Write
	calls      map[string]int
	server     *httptest.Server
}

var (
	operationRe      = regexp.MustCompile(`^\s*(?:query|mutation)\s+(\w+)`)
	createCommentRe  = regexp.MustCompile(`^/repos/([^/]+)/([^/]+)/issues/(\d+)/comments$`)
	contentsPrefixRe = regexp.MustCompile(`^/repos/([^/]+)/([^/]+)/contents/(.+)$`)
)

// NewFakeGitHub starts a fake server for owner/repo#number.
func NewFakeGitHub(owner, repo string, number int) *FakeGitHub {
	f := &FakeGitHub{
		Owner:         owner,
		Repo:          repo,
		Number:        number,
		PullRequestID: "PR_kwDOtest",
		calls:         map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", f.handleGraphQL)
	mux.HandleFunc("/repos/", f.handleREST)
	f.server = httptest.NewServer(mux)
	return f
}

// Close stops the server.
func (f *FakeGitHub) Close() { f.server.Close() }

// URL is the REST base URL.
func (f *FakeGitHub) URL() string { return f.server.URL }

// GraphQLURL is the GraphQL endpoint.
func (f *FakeGitHub) GraphQLURL() string { return f.server.URL + "/graphql" }

// Client returns an HTTP client for the server.
func (f *FakeGitHub) Client() *http.Client { return f.server.Client() }

// Operations returns every operation received, in order.
func (f *FakeGitHub) Operations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.operations...)
}

// Count returns how many times operation was received.
func (f *FakeGitHub) Count(operation string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[operation]
}

// CurrentBody returns the pull request body, including updates.
func (f *FakeGitHub) CurrentBody() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Body
}

// CommentBody returns the body of comment id and whether it exists.
func (f *FakeGitHub) CommentBody(id string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Comments {
		if c.ID == id {
			return c.Body, true
		}
	}
	return "", false
}

// Writes returns every mutation received, in order.
func (f *FakeGitHub) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Write(nil), f.writes...)
}

// record notes a call and reports the status it must fail with (0 for none).
func (f *FakeGitHub) record(operation string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operations = append(f.operations, operation)
	f.calls[operation]++
	if n, ok := f.FailOnCall[operation]; ok && n == f.calls[operation] {
		return http.StatusInternalServerError
	}
	return f.FailOperations[operation]
}

func (f *FakeGitHub) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	m := operationRe.FindStringSubmatch(req.Query)
	if m == nil {
		http.Error(w, "missing operation name", http.StatusBadRequest)
		return
	}
	operation := m[1]
	if status := f.record(operation); status != 0 {
		http.Error(w, "injected failure", status)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var data any
	switch operation {
	case "Labels":
		data = f.pullRequest(func() any {
			nodes, info := f.labelsPage(req.Variables)
			return map[string]any{"labels": map[string]any{"nodes": nodes, "pageInfo": info}}
		})
	case "PullRequestBody":
		data = f.pullRequest(func() any {
			return map[string]any{"id": f.PullRequestID, "body": f.Body}
		})
	case "Comments":
		data = f.pullRequest(func() any {
			nodes, info := f.commentsPage(req.Variables)
			return map[string]any{"comments": map[string]any{"nodes": nodes, "pageInfo": info}}
		})
	case "UpdateIssueComment":
		input, _ := req.Variables["input"].(map[string]any)
		id, _ := input["id"].(string)
		body, _ := input["body"].(string)
		found := false
		for i := range f.Comments {
			if f.Comments[i].ID == id {
				f.Comments[i].Body = body
				found = true
			}
		}
		if !found {
			writeJSON(w, map[string]any{"errors": []map[string]string{{"message": "Could not resolve to a node with the global id of '" + id + "'"}}})
			return
		}
		f.writes = append(f.writes, Write{Operation: operation, TargetID: id, Body: body})
		data = map[string]any{"updateIssueComment": map[string]any{"issueComment": map[string]any{"id": id}}}
	case "UpdatePullRequest":
		input, _ := req.Variables["input"].(map[string]any)
		id, _ := input["pullRequestId"].(string)
		body, _ := input["body"].(string)
		f.Body = body
		f.writes = append(f.writes, Write{Operation: operation, TargetID: id, Body: body})
		data = map[string]any{"updatePullRequest": map[string]any{"pullRequest": map[string]any{"id": id}}}
	default:
		writeJSON(w, map[string]any{"errors": []map[string]string{{"message": "unknown operation " + operation}}})
		return
	}
	writeJSON(w, map[string]any{"data": data})
}

func (f *FakeGitHub) pullRequest(build func() any) any {
	var pr any
	if !f.MissingPullRequest {
		pr = build()
	}
	return map[string]any{"repository": map[string]any{"pullRequest": pr}}
}

func (f *FakeGitHub) labelsPage(vars map[string]any) ([]map[string]string, map[string]any) {
	start, end := f.window(vars, len(f.Labels))
	nodes := []map[string]string{}
	for _, l := range f.Labels[start:end] {
		nodes = append(nodes, map[string]string{"name": l})
	}
	return nodes, pageInfo(end, end < len(f.Labels) || f.TrailingEmptyLabelPage)
}

func (f *FakeGitHub) commentsPage(vars map[string]any) ([]map[string]any, map[string]any) {
	start, end := f.window(vars, len(f.Comments))
	nodes := []map[string]any{}
	for _, c := range f.Comments[start:end] {
		nodes = append(nodes, map[string]any{
			"id":          c.ID,
			"body":        c.Body,
			"isMinimized": false,
			"author":      map[string]string{"login": "someone"},
		})
	}
	return nodes, pageInfo(end, end < len(f.Comments))
}

func (f *FakeGitHub) window(vars map[string]any, total int) (int, int) {
	size := f.PageSize
	if size <= 0 {
		if first, ok := vars["first"].(float64); ok {
			size = int(first)
		}
	}
	if size <= 0 {
		size = 100
	}
	start := 0
	if after, ok := vars["after"].(string); ok {
		start, _ = strconv.Atoi(after)
	}
	start = min(start, total)
	return start, min(start+size, total)
}

func pageInfo(end int, hasNext bool) map[string]any {
	return map[string]any{"endCursor": strconv.Itoa(end), "hasNextPage": hasNext}
}

func (f *FakeGitHub) handleREST(w http.ResponseWriter, r *http.Request) {
	if m := createCommentRe.FindStringSubmatch(r.URL.Path); m != nil && r.Method == http.MethodPost {
		f.createComment(w, r, m)
		return
	}
	if m := contentsPrefixRe.FindStringSubmatch(r.URL.Path); m != nil && r.Method == http.MethodGet {
		if status := f.record("GetContents"); status != 0 || f.Definitions == "" {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{
			"type":     "file",
			"encoding": "base64",
			"path":     m[3],
			"content":  base64.StdEncoding.EncodeToString([]byte(f.Definitions)),
		})
		return
	}
	http.NotFound(w, r)
}

func (f *FakeGitHub) createComment(w http.ResponseWriter, r *http.Request, m []string) {
	if status := f.record("CreateComment"); status != 0 {
		http.Error(w, `{"message":"injected failure"}`, status)
		return
	}
	if m[1] != f.Owner || m[2] != f.Repo || m[3] != strconv.Itoa(f.Number) {
		http.NotFound(w, r)
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	id := fmt.Sprintf("IC_new%d", len(f.Comments)+1)
	f.Comments = append(f.Comments, Comment{ID: id, Body: req.Body})
	f.writes = append(f.writes, Write{Operation: "CreateComment", TargetID: m[3], Body: req.Body})
	n := len(f.Comments)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": 100000 + n, "node_id": id, "body": req.Body})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
