package rest

import (
	"net/http"
)

type sourcesQuery struct {
	Offset int    `schema:"offset"`
	Limit  int    `schema:"limit"`
	Q      string `schema:"q"`
}

func (h *Handler) handleSources(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userOrError(w, r)
	if !ok {
		return
	}

	var q sourcesQuery
	if err := h.queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid query parameters")
		return
	}
	if q.Offset < 0 || q.Limit < 0 {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "offset and limit must be 0 or greater")
		return
	}

	results, err := h.sources.Fetch(r.Context(), userID, q.Q, q.Offset, q.Limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}
