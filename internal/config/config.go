package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

const (
	defaultIntervalMS = 5000
	defaultJitterMS   = 500
)

type File struct {
	Version int      `yaml:"version" json:"version"`
	Poll    Poll     `yaml:"poll" json:"poll"`
	Servers []Server `yaml:"servers" json:"servers"`
	Watches []Watch  `yaml:"watches" json:"watches"`
}

type Poll struct {
	IntervalMS int `yaml:"interval_ms,omitempty" json:"interval_ms,omitempty"`
	JitterMS   int `yaml:"jitter_ms,omitempty" json:"jitter_ms,omitempty"`
}

type Server struct {
	Name     string `yaml:"name" json:"name"`
	URL      string `yaml:"url" json:"url"`
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	APIToken string `yaml:"api_token,omitempty" json:"api_token,omitempty"`
}

type Watch struct {
	Server  string   `yaml:"server" json:"server"`
	Job     string   `yaml:"job" json:"job"`
	Name    string   `yaml:"name,omitempty" json:"name,omitempty"`
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`
}

// Interval returns the base polling interval, defaulted when unset.
func (p Poll) Interval() time.Duration {
	if p.IntervalMS <= 0 {
		return defaultIntervalMS * time.Millisecond
	}
	return time.Duration(p.IntervalMS) * time.Millisecond
}

// Jitter returns the polling jitter, defaulted when unset.
func (p Poll) Jitter() time.Duration {
	if p.JitterMS <= 0 {
		return defaultJitterMS * time.Millisecond
	}
	return time.Duration(p.JitterMS) * time.Millisecond
}

// ServerByName resolves a watch's server reference.
func (cfg File) ServerByName(name string) (Server, bool) {
	for _, s := range cfg.Servers {
		if s.Name == name {
			return s, true
		}
	}
	return Server{}, false
}

func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config file %q: %w", path, err)
	}

	return Parse(data, path)
}

func Parse(data []byte, source string) (File, error) {
	var cfg File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse YAML in %q: %w", source, err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return cfg, fmt.Errorf("invalid config in %q: %s", source, strings.Join(errs, "; "))
	}
	return cfg, nil
}

func (cfg File) Validate() []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported config version %d", cfg.Version))
	}

	if cfg.Poll.IntervalMS < 0 {
		errs = append(errs, "poll.interval_ms must be >= 0")
	}
	if cfg.Poll.JitterMS < 0 {
		errs = append(errs, "poll.jitter_ms must be >= 0")
	}
	// Compare the effective values so the check also holds when one of
	// the two fields falls back to its default.
	if cfg.Poll.Jitter() >= cfg.Poll.Interval() {
		errs = append(errs, fmt.Sprintf("poll.jitter_ms must be smaller than poll.interval_ms (effective %v >= %v)",
			cfg.Poll.Jitter(), cfg.Poll.Interval()))
	}

	if len(cfg.Servers) == 0 {
		errs = append(errs, "servers must contain at least one server")
	}
	serverNames := map[string]struct{}{}
	for i, s := range cfg.Servers {
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Sprintf("servers[%d].name is required", i))
		} else {
			if _, exists := serverNames[s.Name]; exists {
				errs = append(errs, fmt.Sprintf("servers[%d].name duplicate %q", i, s.Name))
			}
			serverNames[s.Name] = struct{}{}
		}
		if strings.TrimSpace(s.URL) == "" {
			errs = append(errs, fmt.Sprintf("servers[%d].url is required", i))
		} else if !strings.HasPrefix(s.URL, "http://") && !strings.HasPrefix(s.URL, "https://") {
			errs = append(errs, fmt.Sprintf("servers[%d].url must start with http:// or https://", i))
		}
		if (s.Username == "") != (s.APIToken == "") {
			errs = append(errs, fmt.Sprintf("servers[%d] must set username and api_token together", i))
		}
	}

	if len(cfg.Watches) == 0 {
		errs = append(errs, "watches must contain at least one watch")
	}
	for i, w := range cfg.Watches {
		if strings.TrimSpace(w.Server) == "" {
			errs = append(errs, fmt.Sprintf("watches[%d].server is required", i))
		} else if _, ok := serverNames[w.Server]; !ok {
			errs = append(errs, fmt.Sprintf("watches[%d].server references unknown server %q", i, w.Server))
		}
		if strings.TrimSpace(w.Job) == "" {
			errs = append(errs, fmt.Sprintf("watches[%d].job is required", i))
		}
		for j, pattern := range w.Include {
			if strings.TrimSpace(pattern) == "" {
				errs = append(errs, fmt.Sprintf("watches[%d].include[%d] must not be empty", i, j))
				continue
			}
			if !doublestar.ValidatePattern(pattern) {
				errs = append(errs, fmt.Sprintf("watches[%d].include[%d] invalid pattern %q", i, j, pattern))
			}
		}
	}

	return errs
}
