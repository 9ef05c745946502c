package store

import (
	"context"
	"fmt"

	"github.com/roach88/gradebook/internal/model"
)

// AddSubject validates sub, assigns an id if absent and persists.
func (s *Store) AddSubject(ctx context.Context, sub model.Subject) (model.Subject, error) {
	const op = "add subject"
	s.mu.Lock()
	defer s.mu.Unlock()

	sub.Code = normalizeKey(sub.Code)
	if err := s.validateSubject(op, sub, ""); err != nil {
		return model.Subject{}, err
	}
	if err := s.checkNewID(op, model.KindSubject, sub.ID); err != nil {
		return model.Subject{}, err
	}

	sub.ID = s.newID(sub.ID)
	s.data.Subjects = append(s.data.Subjects, sub)
	return sub, s.commit(ctx, op)
}

// UpdateSubject merges patch into the subject and persists.
func (s *Store) UpdateSubject(ctx context.Context, id string, patch SubjectPatch) (model.Subject, error) {
	const op = "update subject"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.subjectIndex(id)
	if i < 0 {
		return model.Subject{}, model.NewNotFoundError(op, model.KindSubject, id)
	}

	merged := s.data.Subjects[i]
	patch.apply(&merged)
	merged.Code = normalizeKey(merged.Code)
	if err := s.validateSubject(op, merged, id); err != nil {
		return model.Subject{}, err
	}

	s.data.Subjects[i] = merged
	return merged, s.commit(ctx, op)
}

// RemoveSubject deletes the subject. Teachers keep the id in their subject
// set and sections referencing it become orphans.
func (s *Store) RemoveSubject(ctx context.Context, id string) error {
	const op = "remove subject"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.subjectIndex(id)
	if i < 0 {
		return model.NewNotFoundError(op, model.KindSubject, id)
	}
	s.data.Subjects = append(s.data.Subjects[:i], s.data.Subjects[i+1:]...)
	return s.commit(ctx, op)
}

func (s *Store) validateSubject(op string, sub model.Subject, selfID string) error {
	if err := checkFields(op, model.KindSubject, sub); err != nil {
		return err
	}
	for _, other := range s.data.Subjects {
		if other.ID != selfID && sameKey(other.Code, sub.Code) {
			return model.NewValidationError(op, model.KindSubject,
				fmt.Sprintf("code %q already in use", sub.Code))
		}
	}
	return nil
}
