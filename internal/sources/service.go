// Package sources proxies the NASA image library: it fetches raw search
// results, flattens them into Source records, scores them against the query,
// and records the query in the caller's search history.
package sources

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"astrolab/internal/history"
	"astrolab/internal/relevance"
)

// Service fetches and shapes image sources.
type Service struct {
	cfg     Config
	client  *Client
	history *history.Service
	logger  *slog.Logger
}

// NewService creates the sources service.
func NewService(cfg Config, client *Client, hist *history.Service, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, client: client, history: hist, logger: logger}
}

// Fetch returns image sources for the query, newest page first per the
// upstream's ordering. offset/limit are translated to the upstream's 1-based
// paging; limit == 0 falls back to the configured page size. When userID and
// query are both non-empty the query is recorded in the user's search
// history, best-effort.
func (s *Service) Fetch(ctx context.Context, userID, query string, offset, limit int) ([]Source, error) {
	query = strings.TrimSpace(query)

	pageSize := limit
	if pageSize <= 0 {
		pageSize = s.cfg.PageSize
	}
	page := offset/pageSize + 1

	items, err := s.client.Search(ctx, query, page, pageSize)
	if err != nil {
		return nil, err
	}

	results := make([]Source, 0, len(items))
	for _, item := range items {
		results = append(results, s.mapItem(item, query))
	}

	if userID != "" && query != "" {
		if _, err := s.history.Record(ctx, userID, query); err != nil {
			s.logger.Warn("failed to record search history", "user_id", userID, "error", err)
		}
	}
	return results, nil
}

// mapItem flattens one upstream item. Scoring uses the title, description,
// and keywords together so a match anywhere in the record counts.
func (s *Service) mapItem(item searchItem, query string) Source {
	var data itemData
	if len(item.Data) > 0 {
		data = item.Data[0]
	}

	src := Source{
		ID:           data.NasaID,
		Name:         data.Title,
		Type:         data.MediaType,
		LaunchDate:   data.DateCreated,
		Description:  data.Description,
		Keywords:     data.Keywords,
		Photographer: photographer(data),
	}
	if src.ID == "" {
		src.ID = uuid.NewString()
	}
	if src.Type == "" {
		src.Type = "image"
	}

	for _, link := range item.Links {
		switch {
		case link.Rel == "preview" && link.Render == "image":
			src.ImageURL = link.Href
		case link.Render == "image" && src.ImageURL == "":
			src.ImageURL = link.Href
		case link.Rel == "canonical":
			src.CanonicalURL = link.Href
		}
	}

	if query != "" {
		src.Search = true
		src.ConfidenceScore = relevance.Score(query, searchableText(data))
	}
	return src
}

// photographer picks the first populated credit-ish field.
func photographer(data itemData) string {
	for _, candidate := range []string{data.Photographer, data.Author, data.Credit, data.Creator} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func searchableText(data itemData) string {
	parts := []string{data.Title, data.Description}
	if len(data.Keywords) > 0 {
		parts = append(parts, strings.Join(data.Keywords, " "))
	}
	return strings.Join(parts, " ")
}
