package jenkins

import "fmt"

type JobKind int

const (
	// JobKindUnsupported is the zero value: the response had neither a
	// build list nor child jobs.
	JobKindUnsupported JobKind = iota
	JobKindLeaf
	JobKindFolder
)

func (k JobKind) String() string {
	switch k {
	case JobKindLeaf:
		return "leaf"
	case JobKindFolder:
		return "folder"
	default:
		return "unsupported"
	}
}

// JobDetail is the job-detail response decoded once at the API boundary.
// Kind selects which of the remaining fields are meaningful: Builds and
// LastBuild for a leaf job, Children for a folder.
type JobDetail struct {
	Kind      JobKind
	Name      string
	URL       string
	Color     string
	Builds    []BuildRef
	LastBuild *BuildRef
	Children  []ChildJob
}

// BuildRef identifies one build of a job without its detail payload.
type BuildRef struct {
	Number int64  `json:"number"`
	URL    string `json:"url"`
}

// ChildJob is one entry of a folder's job list.
type ChildJob struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Color string `json:"color"`
}

// BuildDetail is the build-detail response. Timestamp and the duration
// fields are upstream milliseconds.
type BuildDetail struct {
	Number            int64  `json:"number"`
	URL               string `json:"url"`
	Timestamp         int64  `json:"timestamp"`
	Building          bool   `json:"building"`
	Result            string `json:"result"`
	EstimatedDuration int64  `json:"estimatedDuration"`
	Duration          int64  `json:"duration"`
}

// APIError is the uniform failure shape of the client. Every failure mode
// (network, non-2xx, malformed body, unsupported response shape) surfaces
// as one of these; Code is 0 when no HTTP status was received.
type APIError struct {
	URL     string
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("jenkins request %s: status=%d %s", e.URL, e.Code, e.Message)
	}
	return fmt.Sprintf("jenkins request %s: %s", e.URL, e.Message)
}
