package store

import (
	"context"
	"fmt"

	"github.com/roach88/gradebook/internal/model"
)

// AddTeacher validates t, assigns an id if absent and persists.
func (s *Store) AddTeacher(ctx context.Context, t model.Teacher) (model.Teacher, error) {
	const op = "add teacher"
	s.mu.Lock()
	defer s.mu.Unlock()

	t = t.Clone()
	t.Registration = normalizeKey(t.Registration)
	t.SubjectIDs = dedupe(t.SubjectIDs)
	if err := s.validateTeacher(op, t, nil); err != nil {
		return model.Teacher{}, err
	}
	if err := s.checkNationalID(op, model.KindTeacher, t.NationalID); err != nil {
		return model.Teacher{}, err
	}
	if err := s.checkNewID(op, model.KindTeacher, t.ID); err != nil {
		return model.Teacher{}, err
	}

	t.ID = s.newID(t.ID)
	s.data.Teachers = append(s.data.Teachers, t)
	return t.Clone(), s.commit(ctx, op)
}

// UpdateTeacher merges patch into the teacher and persists.
func (s *Store) UpdateTeacher(ctx context.Context, id string, patch TeacherPatch) (model.Teacher, error) {
	const op = "update teacher"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.teacherIndex(id)
	if i < 0 {
		return model.Teacher{}, model.NewNotFoundError(op, model.KindTeacher, id)
	}

	prev := s.data.Teachers[i]
	merged := prev.Clone()
	patch.apply(&merged)
	merged.Registration = normalizeKey(merged.Registration)
	merged.SubjectIDs = dedupe(merged.SubjectIDs)
	if err := s.validateTeacher(op, merged, &prev); err != nil {
		return model.Teacher{}, err
	}
	if merged.NationalID != prev.NationalID {
		if err := s.checkNationalID(op, model.KindTeacher, merged.NationalID); err != nil {
			return model.Teacher{}, err
		}
	}

	s.data.Teachers[i] = merged
	return merged.Clone(), s.commit(ctx, op)
}

// RemoveTeacher deletes the teacher. Sections taught by them become
// orphans that CheckIntegrity reports.
func (s *Store) RemoveTeacher(ctx context.Context, id string) error {
	const op = "remove teacher"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.teacherIndex(id)
	if i < 0 {
		return model.NewNotFoundError(op, model.KindTeacher, id)
	}
	s.data.Teachers = append(s.data.Teachers[:i], s.data.Teachers[i+1:]...)
	return s.commit(ctx, op)
}

// AssignSubject adds subjectID to the teacher's set. Assigning a subject
// already in the set is a no-op that still succeeds.
func (s *Store) AssignSubject(ctx context.Context, teacherID, subjectID string) error {
	const op = "assign subject"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.teacherIndex(teacherID)
	if i < 0 {
		return model.NewNotFoundError(op, model.KindTeacher, teacherID)
	}
	if err := s.requireSubject(op, model.KindTeacher, subjectID); err != nil {
		return err
	}
	if s.data.Teachers[i].Teaches(subjectID) {
		return nil
	}
	s.data.Teachers[i].SubjectIDs = append(s.data.Teachers[i].SubjectIDs, subjectID)
	return s.commit(ctx, op)
}

// UnassignSubject removes subjectID from the teacher's set, if present.
func (s *Store) UnassignSubject(ctx context.Context, teacherID, subjectID string) error {
	const op = "unassign subject"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.teacherIndex(teacherID)
	if i < 0 {
		return model.NewNotFoundError(op, model.KindTeacher, teacherID)
	}
	if !s.data.Teachers[i].Teaches(subjectID) {
		return nil
	}
	kept := []string{}
	for _, id := range s.data.Teachers[i].SubjectIDs {
		if id != subjectID {
			kept = append(kept, id)
		}
	}
	s.data.Teachers[i].SubjectIDs = kept
	return s.commit(ctx, op)
}

// validateTeacher checks field rules, registration uniqueness and that
// every subject the teacher gained exists.
func (s *Store) validateTeacher(op string, t model.Teacher, prev *model.Teacher) error {
	if err := checkFields(op, model.KindTeacher, t); err != nil {
		return err
	}
	selfID := ""
	if prev != nil {
		selfID = prev.ID
	}
	for _, other := range s.data.Teachers {
		if other.ID != selfID && sameKey(other.Registration, t.Registration) {
			return model.NewValidationError(op, model.KindTeacher,
				fmt.Sprintf("registration %q already in use", t.Registration))
		}
	}
	for _, subjectID := range t.SubjectIDs {
		if prev != nil && prev.Teaches(subjectID) {
			continue
		}
		if err := s.requireSubject(op, model.KindTeacher, subjectID); err != nil {
			return err
		}
	}
	return nil
}
