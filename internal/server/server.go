// Package server runs the dashboard: it builds one polling widget per
// configured watch and serves their state as a live-updating tile page.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/pkaul/statusci/internal/config"
	"github.com/pkaul/statusci/internal/jenkins"
	"github.com/pkaul/statusci/internal/widget"
)

func Run(ctx context.Context) error {
	addr := envOrDefault("STATUSCI_SERVER_ADDR", ":8080")
	cfgPath := envOrDefault("STATUSCI_CONFIG", "statusci.yaml")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	d, err := newDashboard(cfg)
	if err != nil {
		return err
	}
	d.start(ctx)
	defer d.stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           buildRouter(d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopMDNS := startMDNSAdvertiser(addr)
	defer stopMDNS()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("statusci server started", "addr", addr, "watches", len(d.widgets))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen and serve: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		slog.Info("statusci server stopped")
		return nil
	case err := <-errCh:
		if err != nil {
			return err
		}
		slog.Info("statusci server stopped")
		return nil
	}
}

// dashboard holds the root widgets in config order. The set is fixed at
// startup; each widget owns its own polling cycle.
type dashboard struct {
	widgets []*widget.Widget
}

func newDashboard(cfg config.File) (*dashboard, error) {
	clients := map[string]*jenkins.Client{}
	for _, s := range cfg.Servers {
		clients[s.Name] = &jenkins.Client{
			BaseURL:  s.URL,
			Username: s.Username,
			APIToken: s.APIToken,
		}
	}

	d := &dashboard{}
	for _, w := range cfg.Watches {
		client, ok := clients[w.Server]
		if !ok {
			return nil, fmt.Errorf("watch %q references unknown server %q", w.Job, w.Server)
		}
		d.widgets = append(d.widgets, widget.New(widget.Options{
			Server:   w.Server,
			ID:       w.Job,
			Name:     w.Name,
			Interval: cfg.Poll.Interval(),
			Jitter:   cfg.Poll.Jitter(),
			Include:  w.Include,
		}, client))
	}
	return d, nil
}

func (d *dashboard) start(ctx context.Context) {
	for _, w := range d.widgets {
		w.Start(ctx)
	}
}

func (d *dashboard) stop() {
	for _, w := range d.widgets {
		w.Stop()
	}
}

func (d *dashboard) snapshots() []widget.Snapshot {
	out := make([]widget.Snapshot, 0, len(d.widgets))
	for _, w := range d.widgets {
		out = append(out, w.Snapshot())
	}
	return out
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
