package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/punchclock/internal/adapters/mq/queue"
	"github.com/okian/punchclock/internal/domain/attendance"
	"github.com/okian/punchclock/internal/domain/model"
	"github.com/okian/punchclock/pkg/logger"
)

// RefreshDependencies defines the operations that reload from the terminal.
type RefreshDependencies interface {
	RefreshUsers(ctx context.Context) (model.Directory, error)
	RefreshEvents(ctx context.Context) (model.RefreshResult, error)
}

// RefreshHandler triggers terminal round trips.
type RefreshHandler struct {
	deps   RefreshDependencies
	logger logger.Logger
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps RefreshDependencies, l logger.Logger) *RefreshHandler {
	return &RefreshHandler{deps: deps, logger: l}
}

type refreshEventsResponse struct {
	Status   string        `json:"status"`
	Fetched  int           `json:"fetched"`
	Retained int           `json:"retained"`
	Dropped  int           `json:"dropped"`
	Records  []punchRecord `json:"records"`
}

// punchRecord is one retained punch as the terminal reported it.
type punchRecord struct {
	UserID   string `json:"user_id"`
	CheckIn  string `json:"check-in"`
	CheckOut string `json:"check-out"`
}

// HandleRefreshUsers handles GET|POST /refresh_users.
func (h *RefreshHandler) HandleRefreshUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.deps.RefreshUsers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usersResponse{Status: "success", Users: users.Map()})
}

// HandleRefreshEvents handles GET|POST /refresh-attendance.
func (h *RefreshHandler) HandleRefreshEvents(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.RefreshEvents(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	records := make([]punchRecord, 0, len(res.Events))
	for _, e := range res.Events {
		s := e.Timestamp.Format(attendance.RecordLayout)
		records = append(records, punchRecord{UserID: e.UserID, CheckIn: s, CheckOut: s})
	}
	writeJSON(w, http.StatusOK, refreshEventsResponse{
		Status:   "success",
		Fetched:  res.Fetched,
		Retained: len(res.Events),
		Dropped:  res.Dropped,
		Records:  records,
	})
}

// fail reports a refresh failure. The prior snapshot is still being served,
// so this is a status result rather than a server error.
func (h *RefreshHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusServiceUnavailable
	if errors.Is(err, queue.ErrQueueFull) {
		status = http.StatusTooManyRequests
	}
	h.logger.Warn(r.Context(), "refresh failed", logger.String("path", r.URL.Path), logger.Error(err))
	writeFailed(w, status, err)
}
