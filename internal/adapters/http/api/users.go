package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/okian/punchclock/internal/domain/model"
	"github.com/okian/punchclock/internal/domain/period"
)

// UsersDependencies defines the user read operations.
type UsersDependencies interface {
	UserSummary(ctx context.Context, userID, period string) model.UserSummary
	Users(ctx context.Context) model.Directory
}

// UsersHandler serves the directory and single-user summaries.
type UsersHandler struct {
	deps UsersDependencies
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(deps UsersDependencies) *UsersHandler {
	return &UsersHandler{deps: deps}
}

type usersResponse struct {
	Status string            `json:"status"`
	Users  map[string]string `json:"users"`
}

// HandleGetUsers handles GET /get_users.
func (h *UsersHandler) HandleGetUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, usersResponse{Status: "success", Users: h.deps.Users(r.Context()).Map()})
}

// HandleUserAttendance handles GET /user-attendance/{user_id}?time_period=.
// Unknown users are not an error; they come back as "Unknown" with no records.
func (h *UsersHandler) HandleUserAttendance(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("time_period")
	if token == "" {
		token = period.TokenCurrentMonth
	}
	writeJSON(w, http.StatusOK, h.deps.UserSummary(r.Context(), mux.Vars(r)["user_id"], token))
}
