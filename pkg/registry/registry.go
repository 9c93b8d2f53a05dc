// Package registry persists frozen schemas in a pebble store and answers
// compatibility questions about them. Schemas are registered by JSON
// text, validated by the builder, and stored in canonical form under a
// ksuid identifier; identical schemas share one ID.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/rdblue/avro/pkg/schema"
)

// Errors
var (
	ErrNotFound = errors.New("registry: schema not found")
)

const (
	schemaPrefix      = "schema/"
	fingerprintPrefix = "fingerprint/"
)

// Entry is one registered schema.
type Entry struct {
	ID     string `json:"id"`
	Schema string `json:"schema"`
}

// Config holds configuration for the registry store.
type Config struct {
	Path string // Directory for the pebble store
}

// Registry is a pebble-backed schema store.
type Registry struct {
	db *pebble.DB
}

// Open opens or creates the registry store at the configured path.
func Open(config Config) (*Registry, error) {
	db, err := pebble.Open(config.Path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("registry: open store: %w", err)
	}
	return &Registry{db: db}, nil
}

// Register parses, freezes, and stores a schema, returning its ID. The
// canonical JSON rendering is what gets persisted, so two spellings of
// the same schema land on the same ID.
func (r *Registry) Register(schemaJSON []byte) (string, error) {
	parsed, err := schema.ParseJSON(schemaJSON)
	if err != nil {
		return "", err
	}
	canonical, err := schema.ToJSON(parsed)
	if err != nil {
		return "", err
	}

	fp := fingerprint(canonical)
	existing, closer, err := r.db.Get([]byte(fingerprintPrefix + fp))
	if err == nil {
		id := string(existing)
		closer.Close()
		return id, nil
	}
	if err != pebble.ErrNotFound {
		return "", fmt.Errorf("registry: lookup fingerprint: %w", err)
	}

	id := ksuid.New().String()
	if err := r.db.Set([]byte(schemaPrefix+id), canonical, pebble.Sync); err != nil {
		return "", fmt.Errorf("registry: store schema: %w", err)
	}
	if err := r.db.Set([]byte(fingerprintPrefix+fp), []byte(id), pebble.Sync); err != nil {
		return "", fmt.Errorf("registry: store fingerprint: %w", err)
	}
	return id, nil
}

// Get returns the frozen schema and its canonical JSON for an ID.
func (r *Registry) Get(id string) (schema.Schema, []byte, error) {
	value, closer, err := r.db.Get([]byte(schemaPrefix + id))
	if err == pebble.ErrNotFound {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("registry: fetch schema: %w", err)
	}
	canonical := make([]byte, len(value))
	copy(canonical, value)
	closer.Close()

	parsed, err := schema.ParseJSON(canonical)
	if err != nil {
		return nil, nil, err
	}
	return parsed, canonical, nil
}

// List returns every registered schema.
func (r *Registry) List() ([]Entry, error) {
	iter, err := r.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(schemaPrefix),
		UpperBound: []byte(schemaPrefix + "\xff"),
	})
	if err != nil {
		return nil, fmt.Errorf("registry: iterate: %w", err)
	}
	defer iter.Close()

	var entries []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		entries = append(entries, Entry{
			ID:     string(iter.Key()[len(schemaPrefix):]),
			Schema: string(iter.Value()),
		})
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("registry: iterate: %w", err)
	}
	return entries, nil
}

// CheckCompat reports whether data written under the writer schema can
// be read under the reader schema. Both arguments are schema IDs.
func (r *Registry) CheckCompat(writerID, readerID string) (bool, error) {
	writer, _, err := r.Get(writerID)
	if err != nil {
		return false, err
	}
	reader, _, err := r.Get(readerID)
	if err != nil {
		return false, err
	}
	return schema.Match(writer, reader), nil
}

// Close releases the store.
func (r *Registry) Close() error {
	return r.db.Close()
}

func fingerprint(canonical []byte) string {
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
