// Package widget implements the polling status widget: one independently
// refreshing unit per watched job, with a three-variant view state and
// recursive child widgets for folders.
package widget

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkaul/statusci/internal/jenkins"
	"github.com/pkaul/statusci/internal/metrics"
	"github.com/pkaul/statusci/internal/status"
)

const (
	defaultInterval = 5 * time.Second
	defaultJitter   = 500 * time.Millisecond
)

// Fetcher is the upstream collaborator. *jenkins.Client satisfies it.
type Fetcher interface {
	FetchJob(ctx context.Context, id string) (jenkins.JobDetail, error)
	FetchBuild(ctx context.Context, ref jenkins.BuildRef) (jenkins.BuildDetail, error)
}

type Options struct {
	// Server is the display name of the upstream server.
	Server string
	// ID is the path-like job identifier, segments joined with "/job/".
	ID string
	// Name overrides the display name derived from ID.
	Name string
	// Interval and Jitter shape the polling cycle; zero values pick the
	// 5000ms / 500ms defaults.
	Interval time.Duration
	Jitter   time.Duration
	// Include filters folder children by name (doublestar patterns).
	// Empty keeps every child.
	Include []string
}

// Widget polls one job and owns the resulting view state. A folder job
// spawns one child Widget per sub-job; each child polls independently.
type Widget struct {
	opts    Options
	fetcher Fetcher

	mu       sync.Mutex
	state    State
	timer    *time.Timer
	started  bool
	stopped  bool
	ctx      context.Context
	cancel   context.CancelFunc
	children map[string]*Widget

	now func() time.Time
}

func New(opts Options, fetcher Fetcher) *Widget {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.Jitter <= 0 {
		opts.Jitter = defaultJitter
	}
	w := &Widget{
		opts:     opts,
		fetcher:  fetcher,
		children: map[string]*Widget{},
		now:      time.Now,
	}
	w.state = Loading{Name: w.displayName(), Status: "loading"}
	return w
}

// Start begins the polling cycle. Calling Start more than once, or after
// Stop, is a no-op.
func (w *Widget) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started || w.stopped {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.state = Loading{Name: w.displayName(), Status: "loading"}
	w.mu.Unlock()

	metrics.ActiveWidgets.Inc()
	go w.refresh()
}

// Stop cancels the pending scheduled refresh and the in-flight request,
// then stops all children. No refresh fires after Stop returns.
func (w *Widget) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	if w.cancel != nil {
		w.cancel()
	}
	kids := make([]*Widget, 0, len(w.children))
	for _, c := range w.children {
		kids = append(kids, c)
	}
	started := w.started
	w.mu.Unlock()

	if started {
		metrics.ActiveWidgets.Dec()
	}
	for _, c := range kids {
		c.Stop()
	}
}

// refresh runs one poll cycle and reschedules itself. The timer chain
// serializes refreshes: there is never more than one in-flight fetch per
// widget.
func (w *Widget) refresh() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	ctx := w.ctx
	w.mu.Unlock()

	startedAt := w.now()
	next, refs := w.poll(ctx)
	metrics.PollDuration.WithLabelValues(w.opts.Server).Observe(w.now().Sub(startedAt).Seconds())

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.state = next
	w.reconcileChildrenLocked(refs)
	w.timer = time.AfterFunc(w.nextDelay(), w.refresh)
	w.mu.Unlock()
}

// poll fetches the job, classifies the response shape and computes the
// next view state. Any failure becomes the error display state; polling
// continues regardless.
func (w *Widget) poll(ctx context.Context) (State, []JobRef) {
	name := w.displayName()

	detail, err := w.fetcher.FetchJob(ctx, w.opts.ID)
	if err != nil {
		metrics.PollsTotal.WithLabelValues(w.opts.Server, "error").Inc()
		metrics.FetchFailuresTotal.WithLabelValues(w.opts.Server, "job").Inc()
		slog.Warn("job fetch failed", "server", w.opts.Server, "job", w.opts.ID, "error", err)
		return Loading{Name: name, Status: "error"}, nil
	}

	switch detail.Kind {
	case jenkins.JobKindFolder:
		refs := w.childRefs(detail.Children)
		metrics.PollsTotal.WithLabelValues(w.opts.Server, "ok").Inc()
		return Multi{Name: name, Children: refs}, refs
	case jenkins.JobKindLeaf:
		single, err := w.leafState(ctx, name, detail)
		if err != nil {
			metrics.PollsTotal.WithLabelValues(w.opts.Server, "error").Inc()
			metrics.FetchFailuresTotal.WithLabelValues(w.opts.Server, "build").Inc()
			slog.Warn("build fetch failed", "server", w.opts.Server, "job", w.opts.ID, "error", err)
			return Loading{Name: name, Status: "error"}, nil
		}
		metrics.PollsTotal.WithLabelValues(w.opts.Server, "ok").Inc()
		return single, nil
	default:
		metrics.PollsTotal.WithLabelValues(w.opts.Server, "error").Inc()
		slog.Warn("unsupported job response", "server", w.opts.Server, "job", w.opts.ID)
		return Loading{Name: name, Status: "error"}, nil
	}
}

func (w *Widget) leafState(ctx context.Context, name string, detail jenkins.JobDetail) (State, error) {
	s := Single{
		Name:        name,
		URL:         detail.URL,
		BuildStatus: status.ClassNone,
		BuildCount:  len(detail.Builds),
	}

	last := detail.LastBuild
	if last == nil && len(detail.Builds) > 0 {
		last = &detail.Builds[0]
	}
	if last == nil {
		// Never built: grey tile with the oldest age styling.
		s.AgeBucket = 5
		return s, nil
	}

	b, err := w.fetcher.FetchBuild(ctx, *last)
	if err != nil {
		return nil, err
	}

	now := w.now()
	ts := time.UnixMilli(b.Timestamp).UTC()
	s.Building = b.Building
	s.BuildStatus = status.Classify(b.Result, b.Building)
	s.Progress = status.Progress(now, ts, time.Duration(b.EstimatedDuration)*time.Millisecond, b.Building)
	s.Timestamp = ts
	s.AgeBucket = status.AgeBucket(now.Sub(ts))
	return s, nil
}

// childRefs applies the include patterns and composes child identifiers.
func (w *Widget) childRefs(children []jenkins.ChildJob) []JobRef {
	refs := make([]JobRef, 0, len(children))
	for _, child := range children {
		if !w.includeChild(child.Name) {
			continue
		}
		refs = append(refs, JobRef{
			Server: w.opts.Server,
			ID:     w.opts.ID + "/job/" + child.Name,
			Name:   child.Name,
		})
	}
	return refs
}

func (w *Widget) includeChild(name string) bool {
	if len(w.opts.Include) == 0 {
		return true
	}
	for _, pattern := range w.opts.Include {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// reconcileChildrenLocked keeps child widgets in sync with the latest
// folder listing: surviving children keep their polling cycle, removed
// ones are stopped, new ones started. Caller holds w.mu.
func (w *Widget) reconcileChildrenLocked(refs []JobRef) {
	want := map[string]struct{}{}
	for _, r := range refs {
		want[r.ID] = struct{}{}
	}
	for id, c := range w.children {
		if _, ok := want[id]; !ok {
			delete(w.children, id)
			go c.Stop()
		}
	}
	for _, r := range refs {
		if _, ok := w.children[r.ID]; ok {
			continue
		}
		c := New(Options{
			Server:   w.opts.Server,
			ID:       r.ID,
			Name:     r.Name,
			Interval: w.opts.Interval,
			Jitter:   w.opts.Jitter,
			Include:  w.opts.Include,
		}, w.fetcher)
		c.now = w.now
		w.children[r.ID] = c
		c.Start(w.ctx)
	}
}

func (w *Widget) nextDelay() time.Duration {
	d := w.opts.Interval
	if j := w.opts.Jitter; j > 0 {
		d += rand.N(2*j+1) - j
	}
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}

func (w *Widget) displayName() string {
	if w.opts.Name != "" {
		return w.opts.Name
	}
	id := w.opts.ID
	if i := strings.LastIndex(id, "/job/"); i >= 0 {
		return id[i+len("/job/"):]
	}
	return id
}

// Snapshot returns a copy of the current state of the widget and its
// children, in the child order of the latest folder listing.
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	st := w.state
	kids := make(map[string]*Widget, len(w.children))
	for id, c := range w.children {
		kids[id] = c
	}
	w.mu.Unlock()

	snap := Snapshot{
		Server: w.opts.Server,
		ID:     w.opts.ID,
		Kind:   st.kind(),
	}
	switch s := st.(type) {
	case Loading:
		snap.Name = s.Name
		snap.Status = s.Status
	case Single:
		snap.Name = s.Name
		snap.URL = s.URL
		snap.BuildStatus = string(s.BuildStatus)
		snap.Building = s.Building
		snap.Progress = s.Progress
		snap.TimestampUTC = s.Timestamp
		snap.BuildCount = s.BuildCount
		snap.AgeBucket = s.AgeBucket
	case Multi:
		snap.Name = s.Name
		for _, ref := range s.Children {
			if c, ok := kids[ref.ID]; ok {
				snap.Children = append(snap.Children, c.Snapshot())
			}
		}
	}
	return snap
}
