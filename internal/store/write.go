package store

import (
	"context"

	"github.com/roach88/gradebook/internal/model"
)

// commit stamps lastModified and writes the full snapshot to the backend.
// Callers hold s.mu and have already applied their change; a failed write
// leaves that change in place and returns a PERSISTENCE error.
func (s *Store) commit(ctx context.Context, op string) error {
	s.data.LastModified = model.Timestamp(s.clock.Now())

	body, err := marshalSnapshot(s.data)
	if err != nil {
		return model.NewPersistenceError(op, err)
	}

	if err := s.backend.Save(ctx, body); err != nil {
		s.logger.Warn("snapshot write failed", "op", op, "error", err)
		return model.NewPersistenceError(op, err)
	}

	s.logger.Debug("snapshot written", "op", op, "bytes", len(body))
	return nil
}

// newID returns id unchanged when set, otherwise a fresh identifier.
func (s *Store) newID(id string) string {
	if id != "" {
		return id
	}
	return s.ids.Generate()
}
