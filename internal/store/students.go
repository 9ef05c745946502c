package store

import (
	"context"
	"fmt"

	"github.com/roach88/gradebook/internal/model"
)

// AddStudent validates st, assigns missing identifiers (student, grades,
// attendance) and persists. A student added with a classSectionId joins
// that section's roster. The stored copy is returned even when the
// persistence write fails.
func (s *Store) AddStudent(ctx context.Context, st model.Student) (model.Student, error) {
	const op = "add student"
	s.mu.Lock()
	defer s.mu.Unlock()

	st = st.Clone()
	st.Registration = normalizeKey(st.Registration)
	if err := s.validateStudent(op, st, nil); err != nil {
		return model.Student{}, err
	}
	if err := s.checkNationalID(op, model.KindStudent, st.NationalID); err != nil {
		return model.Student{}, err
	}
	if err := s.checkNewID(op, model.KindStudent, st.ID); err != nil {
		return model.Student{}, err
	}

	st.ID = s.newID(st.ID)
	for i := range st.Grades {
		st.Grades[i].ID = s.newID(st.Grades[i].ID)
	}
	for i := range st.Attendance {
		st.Attendance[i].ID = s.newID(st.Attendance[i].ID)
	}
	s.data.Students = append(s.data.Students, st)
	s.moveStudent(st.ID, "", st.ClassSectionID)

	return st.Clone(), s.commit(ctx, op)
}

// UpdateStudent merges patch into the student and persists. A changed
// classSectionId moves the student between rosters the way Enroll does;
// clearing it takes the student off the old roster.
func (s *Store) UpdateStudent(ctx context.Context, id string, patch StudentPatch) (model.Student, error) {
	const op = "update student"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.studentIndex(id)
	if i < 0 {
		return model.Student{}, model.NewNotFoundError(op, model.KindStudent, id)
	}

	prev := s.data.Students[i]
	merged := prev.Clone()
	patch.apply(&merged)
	merged.Registration = normalizeKey(merged.Registration)
	if err := s.validateStudent(op, merged, &prev); err != nil {
		return model.Student{}, err
	}
	if merged.NationalID != prev.NationalID {
		if err := s.checkNationalID(op, model.KindStudent, merged.NationalID); err != nil {
			return model.Student{}, err
		}
	}

	s.data.Students[i] = merged
	if merged.ClassSectionID != prev.ClassSectionID {
		s.moveStudent(id, prev.ClassSectionID, merged.ClassSectionID)
	}
	return merged.Clone(), s.commit(ctx, op)
}

// RemoveStudent deletes the student and everything embedded in it.
// Section rosters keep the id; reports skip ids that no longer resolve.
func (s *Store) RemoveStudent(ctx context.Context, id string) error {
	const op = "remove student"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.studentIndex(id)
	if i < 0 {
		return model.NewNotFoundError(op, model.KindStudent, id)
	}
	s.data.Students = append(s.data.Students[:i], s.data.Students[i+1:]...)
	return s.commit(ctx, op)
}

// validateStudent checks field rules, registration uniqueness among other
// students, and that referenced entities exist. On update (prev != nil) only
// references that changed are re-checked, so an existing dangling reference
// does not block unrelated edits.
func (s *Store) validateStudent(op string, st model.Student, prev *model.Student) error {
	if err := checkFields(op, model.KindStudent, st); err != nil {
		return err
	}
	selfID := ""
	if prev != nil {
		selfID = prev.ID
	}
	for _, other := range s.data.Students {
		if other.ID != selfID && sameKey(other.Registration, st.Registration) {
			return model.NewValidationError(op, model.KindStudent,
				fmt.Sprintf("registration %q already in use", st.Registration))
		}
	}
	sectionChanged := prev == nil || prev.ClassSectionID != st.ClassSectionID
	if sectionChanged && st.ClassSectionID != "" && s.sectionIndex(st.ClassSectionID) < 0 {
		return model.NewValidationError(op, model.KindStudent,
			fmt.Sprintf("class section %q does not exist", st.ClassSectionID))
	}
	if prev == nil {
		for _, g := range st.Grades {
			if err := s.requireSubject(op, model.KindGrade, g.SubjectID); err != nil {
				return err
			}
		}
		for _, a := range st.Attendance {
			if err := s.requireSubject(op, model.KindAttendance, a.SubjectID); err != nil {
				return err
			}
		}
	}
	return nil
}
