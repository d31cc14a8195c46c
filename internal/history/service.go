// Package history manages the per-user search history: a deduplicated,
// recency-ordered record of search terms built on the document store's
// "search_history" collection.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"astrolab/internal/storage"
	"astrolab/pkg/model"
)

// Collection is the backing collection name.
const Collection = "search_history"

// timestampFormat is RFC 3339 UTC with fixed-width microseconds, so
// lexicographic comparison of stored timestamps is order-equivalent to
// chronological comparison.
const timestampFormat = "2006-01-02T15:04:05.000000Z"

// Entry is one (user, search term) pair. At most one entry exists per user
// and case-insensitive trimmed term.
type Entry struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	SearchTerm string `json:"search_term"`
	Timestamp  string `json:"timestamp"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// TermCount is one aggregated term with its cross-user frequency.
type TermCount struct {
	SearchTerm string `json:"search_term"`
	Count      int    `json:"count"`
}

// Service implements search-history management. It is stateless between
// calls; all state lives in the store.
type Service struct {
	store storage.Store
	now   func() time.Time
}

// NewService creates the service and ensures the backing collection exists.
func NewService(ctx context.Context, store storage.Store) (*Service, error) {
	if _, err := store.CreateCollection(ctx, Collection); err != nil {
		return nil, err
	}
	return &Service{store: store, now: time.Now}, nil
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(timestampFormat)
}

func entryFromDocument(doc model.Document) Entry {
	return Entry{
		ID:         doc.GetID(),
		UserID:     doc.GetString("user_id"),
		SearchTerm: doc.GetString("search_term"),
		Timestamp:  doc.GetString("timestamp"),
		CreatedAt:  doc.GetString("created_at"),
		UpdatedAt:  doc.GetString("updated_at"),
	}
}

// Record saves the user's search term, or refreshes its timestamp when the
// same term (case-insensitive, trimmed) is already present. The stored term
// keeps the first recording's original form.
func (s *Service) Record(ctx context.Context, userID, term string) (Entry, error) {
	if userID == "" {
		return Entry{}, fmt.Errorf("%w: user id is required", model.ErrInvalidArgument)
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return Entry{}, fmt.Errorf("%w: search term is required", model.ErrInvalidArgument)
	}

	entries, err := s.userEntries(ctx, userID)
	if err != nil {
		return Entry{}, err
	}

	now := s.timestamp()
	for _, entry := range entries {
		if strings.EqualFold(strings.TrimSpace(entry.SearchTerm), term) {
			doc, err := s.store.Update(ctx, Collection, entry.ID, model.Document{
				"timestamp":  now,
				"updated_at": now,
			}, false)
			if err != nil {
				return Entry{}, err
			}
			return entryFromDocument(doc), nil
		}
	}

	doc, err := s.store.Add(ctx, Collection, model.Document{
		"user_id":     userID,
		"search_term": term,
		"timestamp":   now,
		"created_at":  now,
	})
	if err != nil {
		return Entry{}, err
	}
	return entryFromDocument(doc), nil
}

// List returns the user's entries newest first. When limit > 0 the slice
// [offset, offset+limit) is returned; limit == 0 means "no cap" and returns
// everything from offset onward. Out-of-range offsets yield an empty result.
func (s *Service) List(ctx context.Context, userID string, offset, limit int) ([]Entry, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", model.ErrInvalidArgument)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must be 0 or greater", model.ErrInvalidArgument)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must be 0 or greater", model.ErrInvalidArgument)
	}

	entries, err := s.userEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	if offset >= len(entries) {
		return []Entry{}, nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// Delete removes one entry. It fails closed: an entry that does not exist
// and an entry owned by another user both report "not deleted".
func (s *Service) Delete(ctx context.Context, userID, searchID string) (bool, error) {
	if userID == "" || searchID == "" {
		return false, fmt.Errorf("%w: user id and search id are required", model.ErrInvalidArgument)
	}

	doc, err := s.store.GetOne(ctx, Collection, searchID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if doc.GetString("user_id") != userID {
		return false, nil
	}

	return s.store.Delete(ctx, Collection, searchID)
}

// DeleteAll removes every entry owned by the user and returns the count
// deleted. Zero entries is not an error.
func (s *Service) DeleteAll(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", model.ErrInvalidArgument)
	}

	entries, err := s.userEntries(ctx, userID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, entry := range entries {
		removed, err := s.store.Delete(ctx, Collection, entry.ID)
		if err != nil {
			return deleted, err
		}
		if removed {
			deleted++
		}
	}
	return deleted, nil
}

// UniqueTerms returns the user's search terms newest first with
// case-insensitive duplicates removed; the most recent occurrence wins.
// A positive limit truncates the result.
func (s *Service) UniqueTerms(ctx context.Context, userID string, limit int) ([]string, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", model.ErrInvalidArgument)
	}

	entries, err := s.userEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	terms := []string{}
	for _, entry := range entries {
		term := strings.TrimSpace(entry.SearchTerm)
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, term)
	}

	if limit > 0 && limit < len(terms) {
		terms = terms[:limit]
	}
	return terms, nil
}

// Search returns the user's entries whose term contains the query,
// case-insensitive, newest first.
func (s *Service) Search(ctx context.Context, userID, query string) ([]Entry, error) {
	if userID == "" || query == "" {
		return nil, fmt.Errorf("%w: user id and query are required", model.ErrInvalidArgument)
	}

	entries, err := s.userEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matches := []Entry{}
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.SearchTerm), needle) {
			matches = append(matches, entry)
		}
	}
	return matches, nil
}

// PopularTerms aggregates normalized (trimmed, lowercased) term frequency
// across all users. Results are sorted by descending count; ties break
// lexicographically ascending on the term, so the ordering is deterministic.
// A positive limit truncates the result.
func (s *Service) PopularTerms(ctx context.Context, limit int) ([]TermCount, error) {
	docs, err := s.store.Get(ctx, Collection)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, doc := range docs {
		term := strings.ToLower(strings.TrimSpace(doc.GetString("search_term")))
		if term == "" {
			continue
		}
		counts[term]++
	}

	popular := make([]TermCount, 0, len(counts))
	for term, count := range counts {
		popular = append(popular, TermCount{SearchTerm: term, Count: count})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].Count != popular[j].Count {
			return popular[i].Count > popular[j].Count
		}
		return popular[i].SearchTerm < popular[j].SearchTerm
	})

	if limit > 0 && limit < len(popular) {
		popular = popular[:limit]
	}
	return popular, nil
}

// userEntries returns all of the user's entries sorted by timestamp
// descending. Stored timestamps are fixed-width UTC strings, so the string
// comparison is chronological.
func (s *Service) userEntries(ctx context.Context, userID string) ([]Entry, error) {
	docs, err := s.store.Get(ctx, Collection)
	if err != nil {
		return nil, err
	}

	entries := []Entry{}
	for _, doc := range docs {
		if doc.GetString("user_id") != userID {
			continue
		}
		entries = append(entries, entryFromDocument(doc))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries, nil
}
