// Package testutil provides a fake Jenkins upstream for handler and
// widget tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// JenkinsServer serves canned JSON documents keyed by request path.
// Paths follow the upstream layout, e.g. "/job/platform/api/json".
type JenkinsServer struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]string
	statuses  map[string]int
	requests  []string
}

func NewJenkinsServer() *JenkinsServer {
	s := &JenkinsServer{
		responses: map[string]string{
			// Root document served during the client handshake.
			"/api/json": `{"mode":"NORMAL","nodeName":"","useSecurity":false}`,
		},
		statuses: map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Respond registers the body served for path with status 200.
func (s *JenkinsServer) Respond(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = body
	delete(s.statuses, path)
}

// Fail registers an error status for path.
func (s *JenkinsServer) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[path] = status
	delete(s.responses, path)
}

// Requests returns the paths requested so far.
func (s *JenkinsServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *JenkinsServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.Path)
	body, ok := s.responses[r.URL.Path]
	status, failed := s.statuses[r.URL.Path]
	s.mu.Unlock()

	if failed {
		http.Error(w, "upstream failure", status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}
