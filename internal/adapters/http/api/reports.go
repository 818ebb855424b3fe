package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/okian/punchclock/pkg/logger"
)

// ReportDependencies defines the read operations behind report routes.
type ReportDependencies interface {
	Report(ctx context.Context, period string, userIDs []string) (ReportFile, error)
	Attendance(ctx context.Context, period string, userIDs []string) AttendanceView
}

// ReportHandler serves attendance tables as documents and as JSON.
type ReportHandler struct {
	deps   ReportDependencies
	logger logger.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies, l logger.Logger) *ReportHandler {
	return &ReportHandler{deps: deps, logger: l}
}

// HandleDownload handles GET /download-attendance/{period}?user_ids=a,b.
func (h *ReportHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	file, err := h.deps.Report(r.Context(), mux.Vars(r)["period"], userIDs(r))
	if err != nil {
		h.logger.Error(r.Context(), "report failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "render_failed", err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", "attachment;filename="+file.Filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.Header().Set("X-Report-Cache", cacheStatus(file.Cached))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Body)
}

// HandleAttendance handles GET /attendance/{period}?user_ids=a,b.
func (h *ReportHandler) HandleAttendance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Attendance(r.Context(), mux.Vars(r)["period"], userIDs(r)))
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
