package store

import (
	"context"
	"fmt"

	"github.com/roach88/gradebook/internal/model"
)

// AddClassSection validates c, assigns an id if absent and persists. The
// subject and teacher must exist, as must every student on an initial
// roster. Initial roster students are enrolled as by Enroll: they point at
// the new section and leave any previous roster.
func (s *Store) AddClassSection(ctx context.Context, c model.ClassSection) (model.ClassSection, error) {
	const op = "add class section"
	s.mu.Lock()
	defer s.mu.Unlock()

	c = c.Clone()
	c.StudentIDs = dedupe(c.StudentIDs)
	if err := s.validateSection(op, c, nil); err != nil {
		return model.ClassSection{}, err
	}
	for _, studentID := range c.StudentIDs {
		if s.studentIndex(studentID) < 0 {
			return model.ClassSection{}, model.NewValidationError(op, model.KindClassSection,
				fmt.Sprintf("student %q does not exist", studentID))
		}
	}
	if err := s.checkNewID(op, model.KindClassSection, c.ID); err != nil {
		return model.ClassSection{}, err
	}

	c.ID = s.newID(c.ID)
	s.data.ClassSections = append(s.data.ClassSections, c.Clone())
	for _, studentID := range c.StudentIDs {
		st := &s.data.Students[s.studentIndex(studentID)]
		s.moveStudent(studentID, st.ClassSectionID, c.ID)
		st.ClassSectionID = c.ID
	}
	return c.Clone(), s.commit(ctx, op)
}

// UpdateClassSection merges patch into the section and persists. A changed
// subject or teacher must exist.
func (s *Store) UpdateClassSection(ctx context.Context, id string, patch ClassSectionPatch) (model.ClassSection, error) {
	const op = "update class section"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.sectionIndex(id)
	if i < 0 {
		return model.ClassSection{}, model.NewNotFoundError(op, model.KindClassSection, id)
	}

	prev := s.data.ClassSections[i]
	merged := prev.Clone()
	patch.apply(&merged)
	if err := s.validateSection(op, merged, &prev); err != nil {
		return model.ClassSection{}, err
	}

	s.data.ClassSections[i] = merged
	return merged.Clone(), s.commit(ctx, op)
}

// RemoveClassSection deletes the section. Students pointing at it keep
// their classSectionId and show up as orphans.
func (s *Store) RemoveClassSection(ctx context.Context, id string) error {
	const op = "remove class section"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.sectionIndex(id)
	if i < 0 {
		return model.NewNotFoundError(op, model.KindClassSection, id)
	}
	s.data.ClassSections = append(s.data.ClassSections[:i], s.data.ClassSections[i+1:]...)
	return s.commit(ctx, op)
}

// Enroll appends studentID to the section roster, once, and points the
// student at the section. A student enrolled elsewhere is moved off the
// previous section's roster.
func (s *Store) Enroll(ctx context.Context, sectionID, studentID string) error {
	const op = "enroll student"
	s.mu.Lock()
	defer s.mu.Unlock()

	ci := s.sectionIndex(sectionID)
	if ci < 0 {
		return model.NewNotFoundError(op, model.KindClassSection, sectionID)
	}
	si := s.studentIndex(studentID)
	if si < 0 {
		return model.NewNotFoundError(op, model.KindStudent, studentID)
	}

	student := &s.data.Students[si]
	if s.data.ClassSections[ci].Enrolled(studentID) && student.ClassSectionID == sectionID {
		return nil
	}

	s.moveStudent(studentID, student.ClassSectionID, sectionID)
	student.ClassSectionID = sectionID
	return s.commit(ctx, op)
}

// Unenroll removes studentID from the section roster and clears the
// student's classSectionId when it points at this section.
func (s *Store) Unenroll(ctx context.Context, sectionID, studentID string) error {
	const op = "unenroll student"
	s.mu.Lock()
	defer s.mu.Unlock()

	ci := s.sectionIndex(sectionID)
	if ci < 0 {
		return model.NewNotFoundError(op, model.KindClassSection, sectionID)
	}

	changed := false
	section := &s.data.ClassSections[ci]
	if section.Enrolled(studentID) {
		section.StudentIDs = without(section.StudentIDs, studentID)
		changed = true
	}
	if si := s.studentIndex(studentID); si >= 0 && s.data.Students[si].ClassSectionID == sectionID {
		s.data.Students[si].ClassSectionID = ""
		changed = true
	}
	if !changed {
		return model.NewNotFoundError(op, model.KindStudent, studentID)
	}
	return s.commit(ctx, op)
}

func (s *Store) validateSection(op string, c model.ClassSection, prev *model.ClassSection) error {
	if err := checkFields(op, model.KindClassSection, c); err != nil {
		return err
	}
	if prev == nil || prev.SubjectID != c.SubjectID {
		if err := s.requireSubject(op, model.KindClassSection, c.SubjectID); err != nil {
			return err
		}
	}
	if prev == nil || prev.TeacherID != c.TeacherID {
		if s.teacherIndex(c.TeacherID) < 0 {
			return model.NewValidationError(op, model.KindClassSection,
				fmt.Sprintf("teacher %q does not exist", c.TeacherID))
		}
	}
	return nil
}

// moveStudent takes studentID off the roster of section from and appends it
// once to the roster of section to. Empty ids and sections that no longer
// exist are skipped. The caller updates the student's classSectionId.
func (s *Store) moveStudent(studentID, from, to string) {
	if from != "" && from != to {
		if i := s.sectionIndex(from); i >= 0 {
			s.data.ClassSections[i].StudentIDs = without(s.data.ClassSections[i].StudentIDs, studentID)
		}
	}
	if to != "" {
		if i := s.sectionIndex(to); i >= 0 && !s.data.ClassSections[i].Enrolled(studentID) {
			s.data.ClassSections[i].StudentIDs = append(s.data.ClassSections[i].StudentIDs, studentID)
		}
	}
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
