// Package storage implements the file-backed document store: named
// collections of JSON records, one <collection>.json file per collection.
//
// Every operation is a full read of the collection's persisted state, a
// computation of the new state, and a full rewrite. There is no isolation in
// the file format itself, so each read-modify-write cycle is serialized by a
// per-collection mutex.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"astrolab/pkg/model"
)

var collectionNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)

// Store defines the document storage contract consumed by the service layer.
type Store interface {
	// CreateCollection creates an empty collection if absent. It reports
	// whether the collection was newly created. Idempotent.
	CreateCollection(ctx context.Context, name string) (bool, error)

	// Add stores fields as a new document under a freshly generated unique
	// identifier and returns the stored document.
	Add(ctx context.Context, collection string, fields model.Document) (model.Document, error)

	// Get returns all documents in the collection, in persisted order.
	Get(ctx context.Context, collection string) ([]model.Document, error)

	// GetOne returns the document with the given id, or model.ErrNotFound.
	GetOne(ctx context.Context, collection, id string) (model.Document, error)

	// Update merges partial into the document with the given id. New keys are
	// added, existing keys overwritten, and the id is preserved even if the
	// partial carries a different one. When the document is absent: with
	// upsert a new document is created from partial plus the given id,
	// without upsert model.ErrNotFound is returned and nothing is mutated.
	Update(ctx context.Context, collection, id string, partial model.Document, upsert bool) (model.Document, error)

	// Delete removes the document with the given id if present and reports
	// whether a removal occurred.
	Delete(ctx context.Context, collection, id string) (bool, error)
}

// FileStore is the JSON-file implementation of Store. One instance is
// constructed by the composition root and shared by every service.
type FileStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates a store rooted at cfg.Dir, creating the directory if
// needed.
func NewFileStore(cfg Config) (*FileStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", model.ErrStorageIO, err)
	}
	return &FileStore{
		dir:   cfg.Dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// collectionLock returns the mutex guarding the named collection's
// read-modify-write cycle, creating it on first use.
func (s *FileStore) collectionLock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	return lock
}

func (s *FileStore) collectionPath(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func checkCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: collection name cannot be empty", model.ErrInvalidArgument)
	}
	if !collectionNameRegex.MatchString(name) {
		return fmt.Errorf("%w: invalid collection name %q", model.ErrInvalidArgument, name)
	}
	return nil
}

// load reads the collection's current persisted state. A missing file is an
// empty collection; a file that is not a JSON array of objects is corruption
// and never silently coerced to empty.
func (s *FileStore) load(name string) ([]model.Document, error) {
	data, err := os.ReadFile(s.collectionPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Document{}, nil
		}
		return nil, fmt.Errorf("%w: reading collection %s: %v", model.ErrStorageIO, name, err)
	}

	var docs []model.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%w: collection %s: %v", model.ErrCorrupted, name, err)
	}
	return docs, nil
}

// save rewrites the collection's backing file. The write goes through a temp
// file and a rename so a crash mid-write never truncates the collection.
func (s *FileStore) save(name string, docs []model.Document) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding collection %s: %v", model.ErrStorageIO, name, err)
	}

	path := s.collectionPath(name)
	tmp, err := os.CreateTemp(s.dir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: writing collection %s: %v", model.ErrStorageIO, name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing collection %s: %v", model.ErrStorageIO, name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing collection %s: %v", model.ErrStorageIO, name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing collection %s: %v", model.ErrStorageIO, name, err)
	}
	return nil
}

// generateID returns an identifier absent from the given documents' id set.
// UUID collisions are negligible but not impossible, so the loop retries.
func generateID(docs []model.Document) string {
	existing := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		existing[doc.GetID()] = struct{}{}
	}
	for {
		id := uuid.New().String()
		if _, taken := existing[id]; !taken {
			return id
		}
	}
}

func (s *FileStore) CreateCollection(ctx context.Context, name string) (bool, error) {
	if err := checkCollectionName(name); err != nil {
		return false, err
	}

	lock := s.collectionLock(name)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(s.collectionPath(name)); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("%w: checking collection %s: %v", model.ErrStorageIO, name, err)
	}

	if err := s.save(name, []model.Document{}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStore) Add(ctx context.Context, collection string, fields model.Document) (model.Document, error) {
	if err := checkCollectionName(collection); err != nil {
		return nil, err
	}

	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	docs, err := s.load(collection)
	if err != nil {
		return nil, err
	}

	doc := fields.Clone()
	doc.SetID(generateID(docs))

	docs = append(docs, doc)
	if err := s.save(collection, docs); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *FileStore) Get(ctx context.Context, collection string) ([]model.Document, error) {
	if err := checkCollectionName(collection); err != nil {
		return nil, err
	}

	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	return s.load(collection)
}

func (s *FileStore) GetOne(ctx context.Context, collection, id string) (model.Document, error) {
	if err := checkCollectionName(collection); err != nil {
		return nil, err
	}

	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	docs, err := s.load(collection)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if doc.GetID() == id {
			return doc, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *FileStore) Update(ctx context.Context, collection, id string, partial model.Document, upsert bool) (model.Document, error) {
	if err := checkCollectionName(collection); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: document id cannot be empty", model.ErrInvalidArgument)
	}

	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	docs, err := s.load(collection)
	if err != nil {
		return nil, err
	}

	for i, doc := range docs {
		if doc.GetID() != id {
			continue
		}
		updated := doc.Merge(partial)
		docs[i] = updated
		if err := s.save(collection, docs); err != nil {
			return nil, err
		}
		return updated, nil
	}

	if !upsert {
		return nil, model.ErrNotFound
	}

	doc := partial.Clone()
	doc.SetID(id)
	docs = append(docs, doc)
	if err := s.save(collection, docs); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *FileStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	if err := checkCollectionName(collection); err != nil {
		return false, err
	}

	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	docs, err := s.load(collection)
	if err != nil {
		return false, err
	}

	kept := docs[:0]
	removed := false
	for _, doc := range docs {
		if doc.GetID() == id {
			removed = true
			continue
		}
		kept = append(kept, doc)
	}
	if !removed {
		return false, nil
	}
	if err := s.save(collection, kept); err != nil {
		return false, err
	}
	return true, nil
}

var _ Store = (*FileStore)(nil)
