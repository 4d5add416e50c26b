package cachestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"popularmovies/models"
)

var (
	// ErrNotFound is returned by a Backend when no record has been written yet.
	ErrNotFound = errors.New("cache record not found")

	// ErrInvalidRecord indicates a stored record that cannot be trusted.
	ErrInvalidRecord = errors.New("invalid cache record")
)

// Backend stores the encoded catalog record as a single opaque value. Write
// must replace the previous value atomically: a reader sees either the old
// value or the new one, never a mix.
type Backend interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Store owns the persisted catalog record. It encodes and validates records
// and delegates raw storage to a Backend.
type Store struct {
	backend Backend
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Backend returns the name of the underlying storage backend.
func (s *Store) Backend() string {
	return s.backend.Name()
}

// Load returns the cached record, or nil when it is absent, unreadable or
// malformed. Failures are logged, never returned.
func (s *Store) Load(ctx context.Context) *models.CacheRecord {
	data, err := s.backend.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Printf("[cache] no cached catalog in %s backend", s.backend.Name())
			return nil
		}
		storeErrors.WithLabelValues(s.backend.Name(), "load").Inc()
		log.Printf("[cache] failed to read catalog from %s backend: %v", s.backend.Name(), err)
		return nil
	}
	record, err := decodeRecord(data)
	if err != nil {
		storeErrors.WithLabelValues(s.backend.Name(), "decode").Inc()
		log.Printf("[cache] discarding cached catalog from %s backend: %v", s.backend.Name(), err)
		return nil
	}
	return record
}

// Save replaces the cached record with items stamped at now. On error the
// previously stored record is left untouched.
func (s *Store) Save(ctx context.Context, items []models.CatalogItem, now time.Time) error {
	data, err := encodeRecord(items, now)
	if err != nil {
		storeErrors.WithLabelValues(s.backend.Name(), "encode").Inc()
		return err
	}
	if err := s.backend.Write(ctx, data); err != nil {
		storeErrors.WithLabelValues(s.backend.Name(), "save").Inc()
		return fmt.Errorf("write %s backend: %w", s.backend.Name(), err)
	}
	cachedItems.Set(float64(len(items)))
	return nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// IsUsable reports whether record can answer a request at skip without a
// refresh: it must exist, hold more than skip items and be younger than maxAge.
func IsUsable(record *models.CacheRecord, skip int, now time.Time, maxAge time.Duration) bool {
	if record == nil {
		return false
	}
	if skip >= record.Count {
		return false
	}
	return now.Sub(record.LastUpdated) < maxAge
}

// wireRecord mirrors the on-disk document. Pointers distinguish missing
// fields from zero values.
type wireRecord struct {
	Movies      *[]models.CatalogItem `json:"movies"`
	LastUpdated *string               `json:"last_updated"`
	Count       *int                  `json:"count"`
}

// timestamp layouts accepted for last_updated, newest first. The naive
// layouts cover zoneless timestamps such as Python's isoformat() writes.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparsable last_updated %q", ErrInvalidRecord, value)
}

func decodeRecord(data []byte) (*models.CacheRecord, error) {
	var wire wireRecord
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if wire.Movies == nil || wire.LastUpdated == nil || wire.Count == nil {
		return nil, fmt.Errorf("%w: missing fields", ErrInvalidRecord)
	}
	if *wire.Count != len(*wire.Movies) {
		return nil, fmt.Errorf("%w: count %d does not match %d movies", ErrInvalidRecord, *wire.Count, len(*wire.Movies))
	}
	updated, err := parseTimestamp(*wire.LastUpdated)
	if err != nil {
		return nil, err
	}
	return &models.CacheRecord{
		Movies:      *wire.Movies,
		LastUpdated: updated,
		Count:       *wire.Count,
	}, nil
}

func encodeRecord(items []models.CatalogItem, now time.Time) ([]byte, error) {
	if items == nil {
		items = []models.CatalogItem{}
	}
	record := models.CacheRecord{
		Movies:      items,
		LastUpdated: now.UTC(),
		Count:       len(items),
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode cache record: %w", err)
	}
	return data, nil
}
