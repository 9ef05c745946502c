package store

import (
	"context"

	"github.com/roach88/gradebook/internal/model"
)

// Grades and attendance live inside the owning student. The operations
// below locate the student, change the embedded slice and persist.

// AddGrade appends g to the student's grades.
func (s *Store) AddGrade(ctx context.Context, studentID string, g model.Grade) (model.Grade, error) {
	const op = "add grade"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.studentIndex(studentID)
	if i < 0 {
		return model.Grade{}, model.NewNotFoundError(op, model.KindStudent, studentID)
	}
	if err := checkFields(op, model.KindGrade, g); err != nil {
		return model.Grade{}, err
	}
	if err := s.requireSubject(op, model.KindGrade, g.SubjectID); err != nil {
		return model.Grade{}, err
	}

	g.ID = s.newID(g.ID)
	s.data.Students[i].Grades = append(s.data.Students[i].Grades, g)
	return g, s.commit(ctx, op)
}

// UpdateGrade merges patch into one of the student's grades.
func (s *Store) UpdateGrade(ctx context.Context, studentID, gradeID string, patch GradePatch) (model.Grade, error) {
	const op = "update grade"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.studentIndex(studentID)
	if i < 0 {
		return model.Grade{}, model.NewNotFoundError(op, model.KindStudent, studentID)
	}
	j := gradeIndex(s.data.Students[i].Grades, gradeID)
	if j < 0 {
		return model.Grade{}, model.NewNotFoundError(op, model.KindGrade, gradeID)
	}

	prev := s.data.Students[i].Grades[j]
	merged := prev
	patch.apply(&merged)
	if err := checkFields(op, model.KindGrade, merged); err != nil {
		return model.Grade{}, err
	}
	if merged.SubjectID != prev.SubjectID {
		if err := s.requireSubject(op, model.KindGrade, merged.SubjectID); err != nil {
			return model.Grade{}, err
		}
	}

	s.data.Students[i].Grades[j] = merged
	return merged, s.commit(ctx, op)
}

// RemoveGrade deletes one of the student's grades.
func (s *Store) RemoveGrade(ctx context.Context, studentID, gradeID string) error {
	const op = "remove grade"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.studentIndex(studentID)
	if i < 0 {
		return model.NewNotFoundError(op, model.KindStudent, studentID)
	}
	grades := s.data.Students[i].Grades
	j := gradeIndex(grades, gradeID)
	if j < 0 {
		return model.NewNotFoundError(op, model.KindGrade, gradeID)
	}
	s.data.Students[i].Grades = append(grades[:j], grades[j+1:]...)
	return s.commit(ctx, op)
}

// Grades returns a copy of the student's grades in insertion order.
func (s *Store) Grades(studentID string) ([]model.Grade, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.studentIndex(studentID)
	if i < 0 {
		return nil, false
	}
	return append([]model.Grade{}, s.data.Students[i].Grades...), true
}

// AddAttendance appends a to the student's attendance entries.
func (s *Store) AddAttendance(ctx context.Context, studentID string, a model.Attendance) (model.Attendance, error) {
	const op = "add attendance"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.studentIndex(studentID)
	if i < 0 {
		return model.Attendance{}, model.NewNotFoundError(op, model.KindStudent, studentID)
	}
	if err := checkFields(op, model.KindAttendance, a); err != nil {
		return model.Attendance{}, err
	}
	if err := s.requireSubject(op, model.KindAttendance, a.SubjectID); err != nil {
		return model.Attendance{}, err
	}

	a.ID = s.newID(a.ID)
	s.data.Students[i].Attendance = append(s.data.Students[i].Attendance, a)
	return a, s.commit(ctx, op)
}

// RemoveAttendance deletes one of the student's attendance entries.
func (s *Store) RemoveAttendance(ctx context.Context, studentID, attendanceID string) error {
	const op = "remove attendance"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.studentIndex(studentID)
	if i < 0 {
		return model.NewNotFoundError(op, model.KindStudent, studentID)
	}
	entries := s.data.Students[i].Attendance
	for j := range entries {
		if entries[j].ID == attendanceID {
			s.data.Students[i].Attendance = append(entries[:j], entries[j+1:]...)
			return s.commit(ctx, op)
		}
	}
	return model.NewNotFoundError(op, model.KindAttendance, attendanceID)
}

// AttendanceFor returns a copy of the student's attendance in insertion order.
func (s *Store) AttendanceFor(studentID string) ([]model.Attendance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.studentIndex(studentID)
	if i < 0 {
		return nil, false
	}
	return append([]model.Attendance{}, s.data.Students[i].Attendance...), true
}

func gradeIndex(grades []model.Grade, id string) int {
	for i := range grades {
		if grades[i].ID == id {
			return i
		}
	}
	return -1
}
