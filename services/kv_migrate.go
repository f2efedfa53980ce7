package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// CollectionKeys are the keys holding the persisted collections
var CollectionKeys = []string{TemplatesKey, PapersKey}

// ErrDestinationNotEmpty is returned when a copy would overwrite existing data
var ErrDestinationNotEmpty = fmt.Errorf("destination already holds data")

// CopyCollections copies the raw collection values from one backend to
// another and returns the keys it wrote. Absent source keys are skipped.
// Unless overwrite is set, a destination key that already holds a non-empty
// collection aborts the copy before anything is written.
func CopyCollections(ctx context.Context, from, to KeyValueStore, overwrite bool) ([]string, error) {
	values := make(map[string][]byte, len(CollectionKeys))
	for _, key := range CollectionKeys {
		data, ok, err := from.Get(ctx, key)
		if err != nil {
			return nil, &StorageError{Op: "get", Key: key, Err: err}
		}
		if !ok {
			log.Printf("[INFO] %s: %s not present, skipping", from.Name(), key)
			continue
		}
		values[key] = data

		if overwrite {
			continue
		}
		existing, found, err := to.Get(ctx, key)
		if err != nil {
			return nil, &StorageError{Op: "get", Key: key, Err: err}
		}
		if found && !isEmptyCollection(existing) {
			return nil, fmt.Errorf("%s in %s: %w", key, to.Name(), ErrDestinationNotEmpty)
		}
	}

	var written []string
	for _, key := range CollectionKeys {
		data, ok := values[key]
		if !ok {
			continue
		}
		if err := to.Set(ctx, key, data); err != nil {
			return written, &StorageError{Op: "set", Key: key, Err: err}
		}
		written = append(written, key)
	}
	return written, nil
}

func isEmptyCollection(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return false
	}
	return len(records) == 0
}
