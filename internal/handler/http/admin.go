package http

import (
	"net/http"
	"strconv"

	"github.com/accountd/accountd/internal/utils"
)

// listUsers handles GET /api/admin/users.
//
// Query parameters "page" and "page_size" select the page; out-of-range
// values fall back to defaults inside the service. The response is a
// [models.UserPage] with pagination metadata.
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	page := intQueryParam(r, "page", 1)
	pageSize := intQueryParam(r, "page_size", 0)

	userPage, err := h.services.AuthService.ListUsers(r.Context(), page, pageSize)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, userPage, http.StatusOK)
}

// recentActivity handles GET /api/admin/activity.
//
// The "limit" query parameter caps the number of returned events.
func (h *Handler) recentActivity(w http.ResponseWriter, r *http.Request) {
	limit := intQueryParam(r, "limit", 0)

	events, err := h.services.AuthService.RecentActivity(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, events, http.StatusOK)
}

// intQueryParam parses an integer query parameter, falling back to def when
// the parameter is absent or malformed.
func intQueryParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
