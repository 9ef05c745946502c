package model

import "encoding/json"

// Snapshot is the complete dataset at a point in time: the unit of
// persistence and backup.
//
// The four collections are never nil after Normalize, so they always
// serialize as JSON arrays.
type Snapshot struct {
	Students      []Student      `json:"students"`
	Teachers      []Teacher      `json:"teachers"`
	ClassSections []ClassSection `json:"classSections"`
	Subjects      []Subject      `json:"subjects"`
	LastModified  string         `json:"lastModified"`
}

// NewSnapshot returns an empty, normalized snapshot stamped with lastModified.
func NewSnapshot(lastModified string) Snapshot {
	s := Snapshot{LastModified: lastModified}
	s.Normalize()
	return s
}

// Normalize replaces nil collections (top-level and nested) with empty ones.
func (s *Snapshot) Normalize() {
	if s.Students == nil {
		s.Students = []Student{}
	}
	if s.Teachers == nil {
		s.Teachers = []Teacher{}
	}
	if s.ClassSections == nil {
		s.ClassSections = []ClassSection{}
	}
	if s.Subjects == nil {
		s.Subjects = []Subject{}
	}
	for i := range s.Students {
		if s.Students[i].Grades == nil {
			s.Students[i].Grades = []Grade{}
		}
		if s.Students[i].Attendance == nil {
			s.Students[i].Attendance = []Attendance{}
		}
	}
	for i := range s.Teachers {
		if s.Teachers[i].SubjectIDs == nil {
			s.Teachers[i].SubjectIDs = []string{}
		}
	}
	for i := range s.ClassSections {
		if s.ClassSections[i].StudentIDs == nil {
			s.ClassSections[i].StudentIDs = []string{}
		}
	}
}

// HasData reports whether any of the four collections is non-empty.
func (s Snapshot) HasData() bool {
	return len(s.Students) > 0 || len(s.Teachers) > 0 || len(s.ClassSections) > 0 || len(s.Subjects) > 0
}

// Clone returns a normalized deep copy of s.
func (s Snapshot) Clone() Snapshot {
	c := Snapshot{
		Students:      make([]Student, len(s.Students)),
		Teachers:      make([]Teacher, len(s.Teachers)),
		ClassSections: make([]ClassSection, len(s.ClassSections)),
		Subjects:      make([]Subject, len(s.Subjects)),
		LastModified:  s.LastModified,
	}
	for i, v := range s.Students {
		c.Students[i] = v.Clone()
	}
	for i, v := range s.Teachers {
		c.Teachers[i] = v.Clone()
	}
	for i, v := range s.ClassSections {
		c.ClassSections[i] = v.Clone()
	}
	copy(c.Subjects, s.Subjects)
	c.Normalize()
	return c
}

// AttendanceRecords flattens every student's attendance into student-keyed rows.
func (s Snapshot) AttendanceRecords() []AttendanceRecord {
	records := []AttendanceRecord{}
	for _, st := range s.Students {
		for _, a := range st.Attendance {
			records = append(records, AttendanceRecord{Attendance: a, StudentID: st.ID})
		}
	}
	return records
}

// MarshalJSON writes the persisted layout. attendanceRecords is derived from
// the embedded attendance on every write and ignored when reading.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	n := s.Clone()
	return json.Marshal(struct {
		Students          []Student          `json:"students"`
		Teachers          []Teacher          `json:"teachers"`
		ClassSections     []ClassSection     `json:"classSections"`
		Subjects          []Subject          `json:"subjects"`
		AttendanceRecords []AttendanceRecord `json:"attendanceRecords"`
		LastModified      string             `json:"lastModified"`
	}{
		Students:          n.Students,
		Teachers:          n.Teachers,
		ClassSections:     n.ClassSections,
		Subjects:          n.Subjects,
		AttendanceRecords: n.AttendanceRecords(),
		LastModified:      n.LastModified,
	})
}

// Clone returns a deep copy of the student.
func (st Student) Clone() Student {
	c := st
	c.Grades = append([]Grade{}, st.Grades...)
	c.Attendance = append([]Attendance{}, st.Attendance...)
	return c
}

// Clone returns a deep copy of the teacher.
func (t Teacher) Clone() Teacher {
	c := t
	c.SubjectIDs = append([]string{}, t.SubjectIDs...)
	return c
}

// Clone returns a deep copy of the class section.
func (c ClassSection) Clone() ClassSection {
	out := c
	out.StudentIDs = append([]string{}, c.StudentIDs...)
	return out
}
