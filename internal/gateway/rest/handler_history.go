package rest

import (
	"fmt"
	"net/http"
)

type historyQuery struct {
	Offset int `schema:"offset"`
	Limit  int `schema:"limit"`
}

type limitQuery struct {
	Limit int `schema:"limit"`
}

func (h *Handler) handleListHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userOrError(w, r)
	if !ok {
		return
	}

	var q historyQuery
	if err := h.queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid query parameters")
		return
	}

	entries, err := h.history.List(r.Context(), userID, q.Offset, q.Limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    entries,
		"total":   len(entries),
	})
}

func (h *Handler) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userOrError(w, r)
	if !ok {
		return
	}

	count, err := h.history.DeleteAll(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Deleted %d search records", count),
	})
}

func (h *Handler) handleDeleteSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userOrError(w, r)
	if !ok {
		return
	}

	searchID := r.PathValue("id")
	deleted, err := h.history.Delete(r.Context(), userID, searchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		// Absent and not-yours are indistinguishable.
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "Search record not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Search record deleted",
	})
}

func (h *Handler) handlePopularTerms(w http.ResponseWriter, r *http.Request) {
	var q limitQuery
	if err := h.queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid query parameters")
		return
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}

	popular, err := h.history.PopularTerms(r.Context(), q.Limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    popular,
	})
}

func (h *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userOrError(w, r)
	if !ok {
		return
	}

	var q limitQuery
	if err := h.queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid query parameters")
		return
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}

	terms, err := h.history.UniqueTerms(r.Context(), userID, q.Limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    terms,
	})
}
