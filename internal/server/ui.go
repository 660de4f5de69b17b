package server

import (
	"net/http"
)

func (d *dashboard) uiHandler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	case "/ui/shared.js":
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write([]byte(uiSharedJS))
	case "/favicon.ico":
		w.WriteHeader(http.StatusNotFound)
	default:
		http.NotFound(w, r)
	}
}
