// Package docstore is a JSON-file document store: one array file per collection.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMissingID is returned when a document without an "id" is inserted.
var ErrMissingID = errors.New("document has no id")

const setOperator = "$set"

// FileStore implements port.DocumentStore. Collections are loaded from disk on
// every call and rewritten atomically on every mutation.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (port.DocumentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *FileStore) load(collection string) ([]port.Document, error) {
	data, err := os.ReadFile(s.path(collection))
	if errors.Is(err, os.ErrNotExist) {
		return []port.Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}
	if len(data) == 0 {
		return []port.Document{}, nil
	}
	var docs []port.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode collection %s: %w", collection, err)
	}
	return docs, nil
}

func (s *FileStore) save(collection string, docs []port.Document) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", collection, err)
	}
	tmp, err := os.CreateTemp(s.dir, collection+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write collection %s: %w", collection, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write collection %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write collection %s: %w", collection, err)
	}
	if err := os.Rename(tmp.Name(), s.path(collection)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace collection %s: %w", collection, err)
	}
	return nil
}

// Find implements port.DocumentStore.
func (s *FileStore) Find(ctx context.Context, collection string, filter map[string]any, opts port.FindOptions) ([]port.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, err := s.load(collection)
	if err != nil {
		return nil, err
	}
	out := make([]port.Document, 0, len(docs))
	skipped := 0
	for _, d := range docs {
		if !matches(d, filter) {
			continue
		}
		if skipped < opts.Skip {
			skipped++
			continue
		}
		out = append(out, d)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

// Count implements port.DocumentStore.
func (s *FileStore) Count(ctx context.Context, collection string, filter map[string]any) (int, error) {
	docs, err := s.Find(ctx, collection, filter, port.FindOptions{})
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Insert implements port.DocumentStore.
func (s *FileStore) Insert(ctx context.Context, collection string, doc port.Document) error {
	id, ok := doc["id"]
	if !ok || id == nil || id == "" {
		return ErrMissingID
	}
	return s.UpdateOne(ctx, collection, map[string]any{"id": id}, doc)
}

// InsertNew implements port.DocumentStore. The existence check and the write
// happen under one lock.
func (s *FileStore) InsertNew(ctx context.Context, collection string, doc port.Document) (bool, error) {
	id, ok := doc["id"]
	if !ok || id == nil || id == "" {
		return false, ErrMissingID
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.load(collection)
	if err != nil {
		return false, err
	}
	match := map[string]any{"id": id}
	for _, d := range docs {
		if matches(d, match) {
			return false, nil
		}
	}
	return true, s.save(collection, append(docs, doc))
}

// DeleteOne implements port.DocumentStore. The collection is filtered and
// rewritten under one lock.
func (s *FileStore) DeleteOne(ctx context.Context, collection string, match map[string]any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.load(collection)
	if err != nil {
		return false, err
	}
	for i, d := range docs {
		if !matches(d, match) {
			continue
		}
		kept := append(docs[:i:i], docs[i+1:]...)
		return true, s.save(collection, kept)
	}
	return false, nil
}

// UpdateOne implements port.DocumentStore.
func (s *FileStore) UpdateOne(ctx context.Context, collection string, match map[string]any, patch port.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.load(collection)
	if err != nil {
		return err
	}

	set, partial := patch[setOperator].(map[string]any)
	for i, d := range docs {
		if !matches(d, match) {
			continue
		}
		if partial {
			for k, v := range set {
				d[k] = v
			}
			docs[i] = d
		} else {
			docs[i] = patch
		}
		return s.save(collection, docs)
	}

	doc := patch
	if partial {
		doc = port.Document{}
		for k, v := range match {
			doc[k] = v
		}
		for k, v := range set {
			doc[k] = v
		}
	}
	if _, ok := doc["id"]; !ok {
		return ErrMissingID
	}
	return s.save(collection, append(docs, doc))
}

// ReplaceAll implements port.DocumentStore.
func (s *FileStore) ReplaceAll(ctx context.Context, collection string, docs []port.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if docs == nil {
		docs = []port.Document{}
	}
	return s.save(collection, docs)
}

// matches reports whether every filter field equals the document's field.
// Numbers are compared after JSON normalization.
func matches(doc port.Document, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !equalJSON(got, want) {
			return false
		}
	}
	return true
}

func equalJSON(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ra) == string(rb)
}
