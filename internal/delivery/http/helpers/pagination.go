package helpers

import (
	"net/http"
	"strconv"

	"eventmanagement/internal/domain"
)

// Pagination query parameter defaults and limits. Pages are zero-based.
const (
	DefaultPage     = 0
	DefaultPageSize = domain.DefaultPageSize
	MaxPageSize     = domain.MaxPageSize
)

// ParsePageRequest reads page and size from the request query string and clamps
// them to valid ranges. Invalid or missing values fall back to defaults.
func ParsePageRequest(r *http.Request) domain.PageRequest {
	page := DefaultPage
	if s := r.URL.Query().Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			page = min(v, domain.MaxPage)
		}
	}
	size := DefaultPageSize
	if s := r.URL.Query().Get("size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			size = min(v, MaxPageSize)
		}
	}
	return domain.PageRequest{Page: page, Size: size}
}

// PathID parses the named path value as a positive int64. On failure it writes
// a 400 JSON error and returns false.
func PathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
