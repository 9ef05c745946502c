package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/gradebook/internal/integrity"
	"github.com/roach88/gradebook/internal/model"
	"github.com/roach88/gradebook/internal/persist"
)

// Store owns the dataset snapshot and writes it through a persist.Backend.
type Store struct {
	mu      sync.Mutex
	data    model.Snapshot
	backend persist.Backend
	clock   model.Clock
	ids     IDGenerator
	idValid func(string) bool
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for lastModified timestamps.
func WithClock(c model.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithIDGenerator sets the generator used for new identifiers.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithNationalIDValidator sets the check every new person's national id must
// pass. Without it national ids are accepted as-is.
func WithNationalIDValidator(fn func(string) bool) Option {
	return func(s *Store) { s.idValid = fn }
}

// WithLogger sets the logger for persistence diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New loads the snapshot held by backend, or starts from an empty one when
// the backend has none. The store does not write anything until the first
// mutation.
func New(ctx context.Context, backend persist.Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		clock:   model.SystemClock{},
		ids:     UUIDv7Generator{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	body, err := backend.Load(ctx)
	switch {
	case errors.Is(err, persist.ErrNoSnapshot):
		s.data = model.NewSnapshot(model.Timestamp(s.clock.Now()))
		s.logger.Debug("starting with empty dataset")
	case err != nil:
		return nil, fmt.Errorf("open store: %w", err)
	default:
		snap, err := unmarshalSnapshot(body)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		s.data = snap
		s.logger.Debug("dataset loaded",
			"students", len(snap.Students),
			"teachers", len(snap.Teachers),
			"sections", len(snap.ClassSections),
			"subjects", len(snap.Subjects))
	}

	return s, nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// HasData reports whether any top-level collection is non-empty.
func (s *Store) HasData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.HasData()
}

// Snapshot returns a deep copy of the current dataset.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Replace swaps the whole dataset for snap and persists it. Used by backup
// restore; no merge and no integrity check happen here.
func (s *Store) Replace(ctx context.Context, snap model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = snap.Clone()
	return s.commit(ctx, "replace dataset")
}

// Clear resets the store to an empty dataset with a fresh timestamp.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = model.NewSnapshot("")
	return s.commit(ctx, "clear dataset")
}

// CheckIntegrity reports dangling references in the current dataset.
// Read-only.
func (s *Store) CheckIntegrity() integrity.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return integrity.Check(s.data)
}

// PruneOrphans removes students and class sections whose required
// references no longer resolve and persists the result. A single call does
// not cascade; see integrity.Prune.
func (s *Store) PruneOrphans(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := integrity.Prune(&s.data)
	if err := s.commit(ctx, "prune orphans"); err != nil {
		return removed, err
	}
	if removed > 0 {
		s.logger.Info("orphans pruned", "removed", removed)
	}
	return removed, nil
}

// Stats summarizes collection sizes.
type Stats struct {
	Students          int    `json:"students"`
	Teachers          int    `json:"teachers"`
	ClassSections     int    `json:"classSections"`
	Subjects          int    `json:"subjects"`
	AttendanceRecords int    `json:"attendanceRecords"`
	LastModified      string `json:"lastModified"`
}

// Stats returns the current collection sizes.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		Students:      len(s.data.Students),
		Teachers:      len(s.data.Teachers),
		ClassSections: len(s.data.ClassSections),
		Subjects:      len(s.data.Subjects),
		LastModified:  s.data.LastModified,
	}
	for _, student := range s.data.Students {
		st.AttendanceRecords += len(student.Attendance)
	}
	return st
}
