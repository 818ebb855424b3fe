// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	service "github.com/okian/punchclock/internal/app"
	"github.com/okian/punchclock/internal/domain/model"
	"github.com/okian/punchclock/pkg/logger"
)

// ReportFile and AttendanceView are the read shapes returned by the service.
type (
	ReportFile     = service.ReportFile
	AttendanceView = service.AttendanceView
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Report(ctx context.Context, period string, userIDs []string) (ReportFile, error)
	Attendance(ctx context.Context, period string, userIDs []string) AttendanceView
	UserSummary(ctx context.Context, userID, period string) model.UserSummary
	Users(ctx context.Context) model.Directory

	RefreshUsers(ctx context.Context) (model.Directory, error)
	RefreshEvents(ctx context.Context) (model.RefreshResult, error)
}

// Server wires HTTP routes for the attendance API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	reportHandler  *ReportHandler
	usersHandler   *UsersHandler
	refreshHandler *RefreshHandler

	limiter RequestRateLimiter
}

// NewServer creates a new API server with all handlers. A nil limiter
// leaves refresh routes unlimited.
func NewServer(deps Dependencies, statsProvider StatsProvider, limiter RequestRateLimiter) *Server {
	log := logger.Get().Named("http")
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		reportHandler:  NewReportHandler(deps, log),
		usersHandler:   NewUsersHandler(deps),
		refreshHandler: NewRefreshHandler(deps, log),
		limiter:        limiter,
	}
}

// Register attaches all API routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	r.HandleFunc("/download-attendance/{period}",
		MetricsMiddleware(s.reportHandler.HandleDownload, "download_attendance")).Methods(http.MethodGet)
	r.HandleFunc("/attendance/{period}",
		MetricsMiddleware(s.reportHandler.HandleAttendance, "attendance")).Methods(http.MethodGet)

	r.HandleFunc("/user-attendance/{user_id}",
		MetricsMiddleware(s.usersHandler.HandleUserAttendance, "user_attendance")).Methods(http.MethodGet)
	r.HandleFunc("/get_users", MetricsMiddleware(s.usersHandler.HandleGetUsers, "get_users")).Methods(http.MethodGet)

	r.HandleFunc("/refresh_users",
		MetricsMiddleware(RateLimitMiddleware(s.limiter, "refresh_users", s.refreshHandler.HandleRefreshUsers), "refresh_users")).
		Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/refresh-attendance",
		MetricsMiddleware(RateLimitMiddleware(s.limiter, "refresh_attendance", s.refreshHandler.HandleRefreshEvents), "refresh_attendance")).
		Methods(http.MethodGet, http.MethodPost)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusResponse is the {"status": ...} envelope of user and refresh routes.
type statusResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeFailed(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, statusResponse{Status: "failed", Reason: err.Error()})
}

// userIDs reads ?user_ids=a,b (repeatable). Blank entries are dropped.
func userIDs(r *http.Request) []string {
	var ids []string
	for _, raw := range r.URL.Query()["user_ids"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
