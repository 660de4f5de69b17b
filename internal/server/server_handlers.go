package server

import (
	"net/http"

	"github.com/pkaul/statusci/internal/server/httpx"
	"github.com/pkaul/statusci/internal/version"
	"github.com/pkaul/statusci/internal/widget"
)

type widgetsResponse struct {
	Widgets []widget.Snapshot `json:"widgets"`
}

func (d *dashboard) widgetsHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, widgetsResponse{Widgets: d.snapshots()})
}

func serverInfoHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"name":    "statusci",
		"version": version.Current(),
	})
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
