package widget

import (
	"time"

	"github.com/pkaul/statusci/internal/status"
)

// State is the view state of a widget. Exactly one variant is active at a
// time and transitions happen only inside the polling cycle.
type State interface {
	kind() string
}

// Loading is the placeholder state. It doubles as the error display state:
// Status is "loading" while the first fetch is pending and "error" after a
// failed poll.
type Loading struct {
	Name   string
	Status string
}

// Single is the loaded state of a leaf job.
type Single struct {
	Name        string
	URL         string
	BuildStatus status.Class
	Building    bool
	Progress    int
	Timestamp   time.Time
	BuildCount  int
	AgeBucket   int
}

// Multi is the loaded state of a folder: one child reference per sub-job.
type Multi struct {
	Name     string
	Children []JobRef
}

// JobRef identifies one watched job on a server.
type JobRef struct {
	Server string `json:"server"`
	ID     string `json:"id"`
	Name   string `json:"name"`
}

func (Loading) kind() string { return "loading" }
func (Single) kind() string  { return "single" }
func (Multi) kind() string   { return "multi" }

// Snapshot is the JSON view of a widget tree, produced for the dashboard
// API from the current State of a widget and its children.
type Snapshot struct {
	Server       string     `json:"server"`
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Kind         string     `json:"kind"`
	Status       string     `json:"status,omitempty"`
	URL          string     `json:"url,omitempty"`
	BuildStatus  string     `json:"build_status,omitempty"`
	Building     bool       `json:"building,omitempty"`
	Progress     int        `json:"progress,omitempty"`
	TimestampUTC time.Time  `json:"timestamp_utc,omitzero"`
	BuildCount   int        `json:"build_count,omitempty"`
	AgeBucket    int        `json:"age_bucket,omitempty"`
	Children     []Snapshot `json:"children,omitempty"`
}
