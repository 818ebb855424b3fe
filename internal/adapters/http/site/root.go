// Package site serves the embedded attendance console.
package site

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
)

// Register attaches the console to r. It claims every path no other route
// matched, so register it last.
func Register(_ context.Context, r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.PathPrefix("/").Handler(NewRootHandler()).Methods(http.MethodGet, http.MethodHead)
}

// RootHandler serves the embedded static files.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

// ServeHTTP serves index.html at / and static assets elsewhere.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.files.ServeHTTP(w, r)
}
