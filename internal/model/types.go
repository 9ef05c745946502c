package model

// Shift is the period of the day a class section meets.
type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
	ShiftEvening   Shift = "evening"
)

// Shifts lists the valid shift values in display order.
var Shifts = []Shift{ShiftMorning, ShiftAfternoon, ShiftEvening}

// Valid reports whether s is one of the known shifts.
func (s Shift) Valid() bool {
	for _, v := range Shifts {
		if v == s {
			return true
		}
	}
	return false
}

// DateLayout is the calendar date format used for birth dates, grades and
// attendance entries.
const DateLayout = "2006-01-02"

// Person is the field group shared by students and teachers.
// Registration is unique within its kind; student and teacher pools are separate.
type Person struct {
	ID           string `json:"id"`
	Name         string `json:"name" validate:"required"`
	Registration string `json:"registration" validate:"required"`
	NationalID   string `json:"nationalId"`
	Contact      string `json:"contact"`
}

// Student is a person enrolled in at most one class section.
// Grades and Attendance are owned by the student and kept in insertion order.
type Student struct {
	Person
	BirthDate      string       `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	ClassSectionID string       `json:"classSectionId"`
	Grades         []Grade      `json:"grades" validate:"dive"`
	Attendance     []Attendance `json:"attendance" validate:"dive"`
}

// Teacher is a person teaching a set of subjects.
type Teacher struct {
	Person
	Specialization string   `json:"specialization"`
	SubjectIDs     []string `json:"subjectIds"`
}

// Teaches reports whether the teacher has subjectID in their subject set.
func (t Teacher) Teaches(subjectID string) bool {
	for _, id := range t.SubjectIDs {
		if id == subjectID {
			return true
		}
	}
	return false
}

// Subject is a course with a unique code.
type Subject struct {
	ID          string `json:"id"`
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required"`
	CreditHours int    `json:"creditHours" validate:"gt=0"`
	Description string `json:"description"`
}

// ClassSection is a scheduled offering of one subject by one teacher.
// StudentIDs references students by id in enrollment order.
type ClassSection struct {
	ID         string   `json:"id"`
	Name       string   `json:"name" validate:"required"`
	SubjectID  string   `json:"subjectId" validate:"required"`
	TeacherID  string   `json:"teacherId" validate:"required"`
	Shift      Shift    `json:"shift" validate:"required,oneof=morning afternoon evening"`
	Year       int      `json:"year" validate:"gt=0"`
	Term       int      `json:"term" validate:"gt=0"`
	StudentIDs []string `json:"studentIds"`
}

// Enrolled reports whether studentID is in the section roster.
func (c ClassSection) Enrolled(studentID string) bool {
	for _, id := range c.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// Grade is one assessment score for a subject.
type Grade struct {
	ID             string  `json:"id"`
	SubjectID      string  `json:"subjectId" validate:"required"`
	AssessmentType string  `json:"assessmentType" validate:"required"`
	Score          float64 `json:"score" validate:"gte=0"`
	Date           string  `json:"date" validate:"required,datetime=2006-01-02"`
}

// Attendance records presence at one class meeting.
type Attendance struct {
	ID        string `json:"id"`
	SubjectID string `json:"subjectId" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Present   bool   `json:"present"`
}

// AttendanceRecord is the flat, student-keyed form of an attendance entry
// written to the snapshot's attendanceRecords collection.
type AttendanceRecord struct {
	Attendance
	StudentID string `json:"studentId"`
}
