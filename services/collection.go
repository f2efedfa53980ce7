package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Repository is the record-level view over one persisted JSON array
type Repository[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, record T) error
	Replace(ctx context.Context, record T) error
	Remove(ctx context.Context, id string) error
}

// JSONCollection stores every record of a collection as one JSON array under
// a single key. Each write reads the whole array, changes it and writes it back.
// Records that a write does not touch keep their stored bytes.
type JSONCollection[T any] struct {
	kv       KeyValueStore
	key      string
	idOf     func(T) string
	notFound error

	mu sync.Mutex
}

// NewJSONCollection creates a collection under key. notFound is returned by
// Get, Replace and Remove for missing ids.
func NewJSONCollection[T any](kv KeyValueStore, key string, idOf func(T) string, notFound error) *JSONCollection[T] {
	return &JSONCollection[T]{kv: kv, key: key, idOf: idOf, notFound: notFound}
}

// Key returns the storage key of the collection
func (c *JSONCollection[T]) Key() string {
	return c.key
}

type rawRecord struct {
	id  string
	raw json.RawMessage
}

func (c *JSONCollection[T]) load(ctx context.Context) ([]rawRecord, error) {
	data, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return nil, &StorageError{Op: "get", Key: c.key, Err: err}
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, &StorageError{Op: "decode", Key: c.key, Err: err}
	}

	records := make([]rawRecord, 0, len(raws))
	for _, raw := range raws {
		var head struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, &StorageError{Op: "decode", Key: c.key, Err: err}
		}
		records = append(records, rawRecord{id: head.ID, raw: raw})
	}
	return records, nil
}

// save joins the raw records by hand; json.Marshal would re-compact them
func (c *JSONCollection[T]) save(ctx context.Context, records []rawRecord) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range records {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(r.raw)
	}
	buf.WriteByte(']')

	if err := c.kv.Set(ctx, c.key, buf.Bytes()); err != nil {
		return &StorageError{Op: "set", Key: c.key, Err: err}
	}
	return nil
}

func (c *JSONCollection[T]) encode(record T) (rawRecord, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return rawRecord{}, &StorageError{Op: "encode", Key: c.key, Err: err}
	}
	return rawRecord{id: c.idOf(record), raw: raw}, nil
}

// List returns every record in stored order; an absent key is an empty list
func (c *JSONCollection[T]) List(ctx context.Context) ([]T, error) {
	records, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		var v T
		if err := json.Unmarshal(r.raw, &v); err != nil {
			return nil, &StorageError{Op: "decode", Key: c.key, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *JSONCollection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	records, err := c.load(ctx)
	if err != nil {
		return zero, err
	}
	for _, r := range records {
		if r.id != id {
			continue
		}
		var v T
		if err := json.Unmarshal(r.raw, &v); err != nil {
			return zero, &StorageError{Op: "decode", Key: c.key, Err: err}
		}
		return v, nil
	}
	return zero, c.notFound
}

// Insert appends a record; ids must be unique within the collection
func (c *JSONCollection[T]) Insert(ctx context.Context, record T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	next, err := c.encode(record)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.id == next.id {
			return fmt.Errorf("%s: %w", next.id, ErrDuplicateID)
		}
	}
	return c.save(ctx, append(records, next))
}

// Replace swaps the record with the same id in place
func (c *JSONCollection[T]) Replace(ctx context.Context, record T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	next, err := c.encode(record)
	if err != nil {
		return err
	}
	for i, r := range records {
		if r.id == next.id {
			records[i] = next
			return c.save(ctx, records)
		}
	}
	return c.notFound
}

// Remove drops the record with id
func (c *JSONCollection[T]) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	kept := records[:0]
	found := false
	for _, r := range records {
		if r.id == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return c.notFound
	}
	return c.save(ctx, kept)
}

// seed writes records when the key is absent or holds an empty array
func (c *JSONCollection[T]) seed(ctx context.Context, records ...T) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.load(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	encoded := make([]rawRecord, 0, len(records))
	for _, r := range records {
		e, err := c.encode(r)
		if err != nil {
			return false, err
		}
		encoded = append(encoded, e)
	}
	if err := c.save(ctx, encoded); err != nil {
		return false, err
	}
	return true, nil
}

func filterByName[T any](records []T, query string, nameOf func(T) string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(nameOf(r)), q) {
			out = append(out, r)
		}
	}
	return out
}
