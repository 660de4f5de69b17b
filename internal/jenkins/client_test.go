package jenkins

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

type mockRoundTripper func(*http.Request) (*http.Response, error)

func (m mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m(req)
}

func mockClient(fn mockRoundTripper) *http.Client {
	return &http.Client{Transport: fn}
}

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestFetchJobLeafShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/json":
			_, _ = w.Write([]byte(`{"mode":"NORMAL","nodeName":""}`))
		case "/job/platform/api/json":
			_, _ = w.Write([]byte(`{
				"_class": "org.jenkinsci.plugins.workflow.job.WorkflowJob",
				"name": "platform",
				"url": "http://ci/job/platform/",
				"color": "blue",
				"builds": [{"number": 12, "url": "http://ci/job/platform/12/"}],
				"lastBuild": {"number": 12, "url": "http://ci/job/platform/12/"}
			}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, HTTPClient: srv.Client()}
	detail, err := c.FetchJob(context.Background(), "platform")
	if err != nil {
		t.Fatalf("fetch job: %v", err)
	}
	if detail.Kind != JobKindLeaf {
		t.Fatalf("kind: got %v want leaf", detail.Kind)
	}
	if len(detail.Builds) != 1 || detail.Builds[0].Number != 12 {
		t.Fatalf("unexpected builds: %+v", detail.Builds)
	}
	if detail.LastBuild == nil || detail.LastBuild.URL != "http://ci/job/platform/12/" {
		t.Fatalf("unexpected last build: %+v", detail.LastBuild)
	}
}

func TestFetchJobEmptyBuildListIsStillLeaf(t *testing.T) {
	c := &Client{BaseURL: "http://ci", HTTPClient: mockClient(func(*http.Request) (*http.Response, error) {
		return textResponse(200, `{"_class":"hudson.model.FreeStyleProject","name":"fresh","builds":[]}`), nil
	})}
	detail, err := c.FetchJob(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("fetch job: %v", err)
	}
	if detail.Kind != JobKindLeaf {
		t.Fatalf("kind: got %v want leaf", detail.Kind)
	}
	if len(detail.Builds) != 0 || detail.LastBuild != nil {
		t.Fatalf("expected no builds, got %+v", detail)
	}
}

func TestFetchJobFolderShape(t *testing.T) {
	c := &Client{BaseURL: "http://ci", HTTPClient: mockClient(func(*http.Request) (*http.Response, error) {
		return textResponse(200, `{"name":"tools","jobs":[{"name":"a"},{"name":"b","color":"red"}]}`), nil
	})}
	detail, err := c.FetchJob(context.Background(), "tools")
	if err != nil {
		t.Fatalf("fetch job: %v", err)
	}
	if detail.Kind != JobKindFolder {
		t.Fatalf("kind: got %v want folder", detail.Kind)
	}
	if len(detail.Children) != 2 || detail.Children[1].Color != "red" {
		t.Fatalf("unexpected children: %+v", detail.Children)
	}
}

func TestFetchJobEmptyFolderClassifiedByClass(t *testing.T) {
	c := &Client{BaseURL: "http://ci", HTTPClient: mockClient(func(*http.Request) (*http.Response, error) {
		return textResponse(200, `{"_class":"com.cloudbees.hudson.plugins.folder.Folder","name":"empty"}`), nil
	})}
	detail, err := c.FetchJob(context.Background(), "empty")
	if err != nil {
		t.Fatalf("fetch job: %v", err)
	}
	if detail.Kind != JobKindFolder {
		t.Fatalf("kind: got %v want folder", detail.Kind)
	}
	if len(detail.Children) != 0 {
		t.Fatalf("unexpected children: %+v", detail.Children)
	}
}

func TestFetchJobUnsupportedShape(t *testing.T) {
	c := &Client{BaseURL: "http://ci", HTTPClient: mockClient(func(*http.Request) (*http.Response, error) {
		return textResponse(200, `{"name":"weird","description":"no builds, no jobs"}`), nil
	})}
	_, err := c.FetchJob(context.Background(), "weird")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if !strings.Contains(apiErr.Message, "unsupported") {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
}

func TestFetchJobComposedIdentifierPath(t *testing.T) {
	var gotPath string
	c := &Client{BaseURL: "http://ci/", HTTPClient: mockClient(func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.EscapedPath()
		return textResponse(200, `{"_class":"hudson.model.FreeStyleProject","builds":[]}`), nil
	})}
	if _, err := c.FetchJob(context.Background(), "tools/job/my app"); err != nil {
		t.Fatalf("fetch job: %v", err)
	}
	if gotPath != "/job/tools/job/my%20app/api/json" {
		t.Fatalf("unexpected request path: %q", gotPath)
	}
}

func TestFetchJobSendsBasicAuth(t *testing.T) {
	var user, token string
	var ok bool
	c := &Client{
		BaseURL:  "http://ci",
		Username: "bob",
		APIToken: "secret",
		HTTPClient: mockClient(func(req *http.Request) (*http.Response, error) {
			user, token, ok = req.BasicAuth()
			return textResponse(200, `{"_class":"hudson.model.FreeStyleProject","builds":[]}`), nil
		}),
	}
	if _, err := c.FetchJob(context.Background(), "x"); err != nil {
		t.Fatalf("fetch job: %v", err)
	}
	if !ok || user != "bob" || token != "secret" {
		t.Fatalf("basic auth not sent: ok=%v user=%q", ok, user)
	}
}

func TestFetchJobNon200YieldsAPIError(t *testing.T) {
	c := &Client{BaseURL: "http://ci", HTTPClient: mockClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/api/json" {
			return textResponse(200, `{"mode":"NORMAL"}`), nil
		}
		return textResponse(404, "no such job"), nil
	})}
	_, err := c.FetchJob(context.Background(), "gone")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != 404 {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
	if !strings.Contains(apiErr.URL, "/job/gone/api/json") {
		t.Fatalf("unexpected error URL: %q", apiErr.URL)
	}
}

func TestFetchJobNetworkFailureYieldsAPIError(t *testing.T) {
	c := &Client{BaseURL: "http://ci", HTTPClient: mockClient(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})}
	_, err := c.FetchJob(context.Background(), "x")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != 0 {
		t.Fatalf("network failure must carry no status code, got %d", apiErr.Code)
	}
}

func TestFetchJobRecoversAfterFailedHandshake(t *testing.T) {
	var calls atomic.Int32
	c := &Client{BaseURL: "http://ci", HTTPClient: mockClient(func(*http.Request) (*http.Response, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("connection refused")
		}
		return textResponse(200, `{"_class":"hudson.model.FreeStyleProject","builds":[]}`), nil
	})}

	if _, err := c.FetchJob(context.Background(), "x"); err == nil {
		t.Fatal("expected first fetch to fail")
	}
	detail, err := c.FetchJob(context.Background(), "x")
	if err != nil {
		t.Fatalf("second fetch should recover, got: %v", err)
	}
	if detail.Kind != JobKindLeaf {
		t.Fatalf("kind: got %v want leaf", detail.Kind)
	}
}

func TestFetchJobMalformedBodyYieldsAPIError(t *testing.T) {
	c := &Client{BaseURL: "http://ci", HTTPClient: mockClient(func(*http.Request) (*http.Response, error) {
		return textResponse(200, `{"builds": [`), nil
	})}
	_, err := c.FetchJob(context.Background(), "x")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
}

func TestFetchBuild(t *testing.T) {
	var gotPath string
	c := &Client{BaseURL: "http://ci", HTTPClient: mockClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/api/json" {
			return textResponse(200, `{"mode":"NORMAL"}`), nil
		}
		gotPath = req.URL.Path
		return textResponse(200, `{
			"number": 7,
			"url": "http://ci/job/platform/7/",
			"timestamp": 1700000000000,
			"building": true,
			"result": "",
			"estimatedDuration": 60000,
			"duration": 0
		}`), nil
	})}
	detail, err := c.FetchBuild(context.Background(), BuildRef{Number: 7, URL: "http://ci/job/platform/7/"})
	if err != nil {
		t.Fatalf("fetch build: %v", err)
	}
	if gotPath != "/job/platform/7/api/json" {
		t.Fatalf("unexpected request path: %q", gotPath)
	}
	if !detail.Building || detail.Timestamp != 1700000000000 || detail.EstimatedDuration != 60000 {
		t.Fatalf("unexpected build detail: %+v", detail)
	}
}

func TestFetchBuildNon200YieldsAPIError(t *testing.T) {
	c := &Client{BaseURL: "http://ci", HTTPClient: mockClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/api/json" {
			return textResponse(200, `{"mode":"NORMAL"}`), nil
		}
		return textResponse(404, "gone"), nil
	})}
	_, err := c.FetchBuild(context.Background(), BuildRef{Number: 9, URL: "http://ci/job/platform/9/"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != 404 {
		t.Fatalf("unexpected code: %d", apiErr.Code)
	}
}
