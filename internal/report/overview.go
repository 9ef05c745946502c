// Package report derives read-only views of a dataset: collection
// overviews, collated student listings, and spreadsheet exports and
// imports.
package report

import (
	"encoding/json"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/gradebook/internal/integrity"
	"github.com/roach88/gradebook/internal/model"
)

// Overview summarizes a dataset.
type Overview struct {
	Students           int              `json:"students"`
	Teachers           int              `json:"teachers"`
	ClassSections      int              `json:"classSections"`
	Subjects           int              `json:"subjects"`
	AttendanceRecords  int              `json:"attendanceRecords"`
	LastModified       string           `json:"lastModified"`
	SizeBytes          int              `json:"sizeBytes"`
	Integrity          integrity.Report `json:"integrity"`
	StudentsPerSection []SectionCount   `json:"studentsPerSection"`
	SubjectsPerTeacher []TeacherLoad    `json:"subjectsPerTeacher"`
}

// SectionCount is the roster size of one class section.
type SectionCount struct {
	SectionID string `json:"sectionId"`
	Name      string `json:"name"`
	Students  int    `json:"students"`
}

// TeacherLoad is the number of subjects one teacher is assigned.
type TeacherLoad struct {
	TeacherID string `json:"teacherId"`
	Name      string `json:"name"`
	Subjects  int    `json:"subjects"`
}

// NewOverview computes the overview of snap. SizeBytes is the length of the
// persisted form.
func NewOverview(snap model.Snapshot) (Overview, error) {
	body, err := json.Marshal(snap)
	if err != nil {
		return Overview{}, fmt.Errorf("measure snapshot: %w", err)
	}

	ov := Overview{
		Students:           len(snap.Students),
		Teachers:           len(snap.Teachers),
		ClassSections:      len(snap.ClassSections),
		Subjects:           len(snap.Subjects),
		AttendanceRecords:  len(snap.AttendanceRecords()),
		LastModified:       snap.LastModified,
		SizeBytes:          len(body),
		Integrity:          integrity.Check(snap),
		StudentsPerSection: []SectionCount{},
		SubjectsPerTeacher: []TeacherLoad{},
	}
	for _, c := range snap.ClassSections {
		ov.StudentsPerSection = append(ov.StudentsPerSection, SectionCount{
			SectionID: c.ID, Name: c.Name, Students: len(c.StudentIDs),
		})
	}
	for _, t := range snap.Teachers {
		ov.SubjectsPerTeacher = append(ov.SubjectsPerTeacher, TeacherLoad{
			TeacherID: t.ID, Name: t.Name, Subjects: len(t.SubjectIDs),
		})
	}
	return ov, nil
}

// SortStudents orders students by name the way a Brazilian Portuguese
// reader expects (accents and case are secondary), then by registration.
func SortStudents(students []model.Student) {
	col := collate.New(language.BrazilianPortuguese, collate.Loose)
	slices.SortStableFunc(students, func(a, b model.Student) int {
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return col.CompareString(a.Registration, b.Registration)
	})
}
