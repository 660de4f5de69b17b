// Package jenkins wraps a gojenkins session behind the two calls the
// dashboard needs. The job response is converted exactly once into a
// tagged JobDetail, and every failure is normalized into an *APIError.
package jenkins

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bndr/gojenkins"
)

type Client struct {
	// BaseURL is the server root, e.g. "https://ci.example.org".
	BaseURL string
	// Username and APIToken enable basic auth when both are set.
	Username string
	APIToken string
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client

	mu  sync.Mutex
	api *gojenkins.Jenkins
}

// connect initializes the gojenkins session on first use. A failed
// handshake is not latched: the next call retries, so a server that was
// down at startup is picked up once it returns.
func (c *Client) connect(ctx context.Context) (*gojenkins.Jenkins, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api != nil {
		return c.api, nil
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	base := strings.TrimRight(c.BaseURL, "/")
	var api *gojenkins.Jenkins
	if c.Username != "" && c.APIToken != "" {
		api = gojenkins.CreateJenkins(httpClient, base, c.Username, c.APIToken)
	} else {
		api = gojenkins.CreateJenkins(httpClient, base)
	}
	if _, err := api.Init(ctx); err != nil {
		return nil, wrapErr(base+"/api/json", err)
	}
	c.api = api
	return api, nil
}

// FetchJob fetches the job-detail document for id. The id is a path-like
// identifier whose segments are separated by "/job/", matching how child
// identifiers are composed for folders.
func (c *Client) FetchJob(ctx context.Context, id string) (JobDetail, error) {
	u := c.jobURL(id)

	api, err := c.connect(ctx)
	if err != nil {
		return JobDetail{}, err
	}
	job, err := api.GetJob(ctx, id)
	if err != nil {
		return JobDetail{}, wrapErr(u, err)
	}
	return convertJob(u, job.Raw)
}

// convertJob classifies the raw response into the tagged JobDetail. A
// folder carries child jobs, a leaf carries builds; a response with
// neither marker is reported as unsupported.
func convertJob(u string, raw *gojenkins.JobResponse) (JobDetail, error) {
	detail := JobDetail{
		Name:  raw.Name,
		URL:   raw.URL,
		Color: raw.Color,
	}
	switch {
	case isFolderClass(raw.Class) || len(raw.Jobs) > 0:
		detail.Kind = JobKindFolder
		detail.Children = make([]ChildJob, 0, len(raw.Jobs))
		for _, j := range raw.Jobs {
			detail.Children = append(detail.Children, ChildJob{Name: j.Name, URL: j.Url, Color: j.Color})
		}
	case raw.Class != "" || len(raw.Builds) > 0 || raw.LastBuild.Number > 0:
		detail.Kind = JobKindLeaf
		detail.Builds = make([]BuildRef, 0, len(raw.Builds))
		for _, b := range raw.Builds {
			detail.Builds = append(detail.Builds, BuildRef{Number: b.Number, URL: b.URL})
		}
		if raw.LastBuild.Number > 0 || raw.LastBuild.URL != "" {
			detail.LastBuild = &BuildRef{Number: raw.LastBuild.Number, URL: raw.LastBuild.URL}
		}
	default:
		return JobDetail{}, &APIError{URL: u, Code: http.StatusOK, Message: "unsupported job response shape"}
	}
	return detail, nil
}

// isFolderClass reports whether the _class marks a container of child
// jobs rather than a buildable project.
func isFolderClass(class string) bool {
	switch class {
	case "com.cloudbees.hudson.plugins.folder.Folder",
		"jenkins.branch.OrganizationFolder",
		"org.jenkinsci.plugins.workflow.multibranch.WorkflowMultiBranchProject":
		return true
	}
	return false
}

// FetchBuild fetches the build-detail document for a build reference.
func (c *Client) FetchBuild(ctx context.Context, ref BuildRef) (BuildDetail, error) {
	u := strings.TrimRight(ref.URL, "/") + "/api/json"

	api, err := c.connect(ctx)
	if err != nil {
		return BuildDetail{}, err
	}
	base, err := buildBase(ref.URL)
	if err != nil {
		return BuildDetail{}, &APIError{URL: u, Message: "invalid build URL: " + err.Error()}
	}

	build := gojenkins.Build{Jenkins: api, Raw: new(gojenkins.BuildResponse), Base: base}
	status, err := build.Poll(ctx)
	if err != nil {
		return BuildDetail{}, wrapErr(u, err)
	}
	if status != http.StatusOK {
		return BuildDetail{}, &APIError{URL: u, Code: status, Message: http.StatusText(status)}
	}

	raw := build.Raw
	return BuildDetail{
		Number:            raw.Number,
		URL:               raw.URL,
		Timestamp:         raw.Timestamp,
		Building:          raw.Building,
		Result:            raw.Result,
		EstimatedDuration: int64(raw.EstimatedDuration),
		Duration:          int64(raw.Duration),
	}, nil
}

// buildBase strips scheme and host from a build URL so it can serve as
// a request path on the session.
func buildBase(refURL string) (string, error) {
	parsed, err := url.Parse(refURL)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(parsed.Path, "/"), nil
}

func (c *Client) jobURL(id string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/job/" + id + "/api/json"
}

// wrapErr normalizes a gojenkins error into an *APIError. Non-200
// statuses surface from gojenkins as the bare status code string.
func wrapErr(u string, err error) *APIError {
	if code, convErr := strconv.Atoi(strings.TrimSpace(err.Error())); convErr == nil && code >= 100 {
		return &APIError{URL: u, Code: code, Message: http.StatusText(code)}
	}
	return &APIError{URL: u, Message: err.Error()}
}
