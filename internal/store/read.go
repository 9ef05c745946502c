package store

import "github.com/roach88/gradebook/internal/model"

// Index helpers scan linearly and return -1 when absent. Callers hold s.mu.

func (s *Store) studentIndex(id string) int {
	for i := range s.data.Students {
		if s.data.Students[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) teacherIndex(id string) int {
	for i := range s.data.Teachers {
		if s.data.Teachers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) subjectIndex(id string) int {
	for i := range s.data.Subjects {
		if s.data.Subjects[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) sectionIndex(id string) int {
	for i := range s.data.ClassSections {
		if s.data.ClassSections[i].ID == id {
			return i
		}
	}
	return -1
}

// GetStudent returns a copy of the student with the given id.
func (s *Store) GetStudent(id string) (model.Student, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.studentIndex(id); i >= 0 {
		return s.data.Students[i].Clone(), true
	}
	return model.Student{}, false
}

// ListStudents returns copies of all students in insertion order.
func (s *Store) ListStudents() []model.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Student, len(s.data.Students))
	for i, v := range s.data.Students {
		out[i] = v.Clone()
	}
	return out
}

// GetTeacher returns a copy of the teacher with the given id.
func (s *Store) GetTeacher(id string) (model.Teacher, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.teacherIndex(id); i >= 0 {
		return s.data.Teachers[i].Clone(), true
	}
	return model.Teacher{}, false
}

// ListTeachers returns copies of all teachers in insertion order.
func (s *Store) ListTeachers() []model.Teacher {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Teacher, len(s.data.Teachers))
	for i, v := range s.data.Teachers {
		out[i] = v.Clone()
	}
	return out
}

// GetSubject returns the subject with the given id.
func (s *Store) GetSubject(id string) (model.Subject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.subjectIndex(id); i >= 0 {
		return s.data.Subjects[i], true
	}
	return model.Subject{}, false
}

// FindSubjectByCode looks a subject up by its unique code.
func (s *Store) FindSubjectByCode(code string) (model.Subject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.data.Subjects {
		if sameKey(v.Code, code) {
			return v, true
		}
	}
	return model.Subject{}, false
}

// ListSubjects returns all subjects in insertion order.
func (s *Store) ListSubjects() []model.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Subject{}, s.data.Subjects...)
}

// GetClassSection returns a copy of the class section with the given id.
func (s *Store) GetClassSection(id string) (model.ClassSection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.sectionIndex(id); i >= 0 {
		return s.data.ClassSections[i].Clone(), true
	}
	return model.ClassSection{}, false
}

// ListClassSections returns copies of all class sections in insertion order.
func (s *Store) ListClassSections() []model.ClassSection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ClassSection, len(s.data.ClassSections))
	for i, v := range s.data.ClassSections {
		out[i] = v.Clone()
	}
	return out
}

// SectionStudents returns copies of the students on the section's roster,
// in enrollment order. Roster ids that no longer resolve are skipped.
func (s *Store) SectionStudents(sectionID string) ([]model.Student, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.sectionIndex(sectionID)
	if i < 0 {
		return nil, false
	}
	out := []model.Student{}
	for _, id := range s.data.ClassSections[i].StudentIDs {
		if j := s.studentIndex(id); j >= 0 {
			out = append(out, s.data.Students[j].Clone())
		}
	}
	return out, true
}
