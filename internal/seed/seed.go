// Package seed loads a starter dataset from YAML and inserts it through
// the store's public operations, so every validation rule applies.
//
// Entities reference each other by their natural keys rather than ids:
// subjects by code, teachers and students by registration.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gradebook/internal/model"
	"github.com/roach88/gradebook/internal/store"
)

// ErrStoreHasData is returned by Apply when the store is not empty and
// force is false.
var ErrStoreHasData = errors.New("store already has data")

// Dataset is the YAML document.
type Dataset struct {
	Subjects []Subject `yaml:"subjects"`
	Teachers []Teacher `yaml:"teachers"`
	Students []Student `yaml:"students"`
	Sections []Section `yaml:"sections"`
}

// Subject is a subject entry.
type Subject struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	CreditHours int    `yaml:"creditHours"`
	Description string `yaml:"description,omitempty"`
}

// Teacher is a teacher entry. Subjects lists subject codes.
type Teacher struct {
	Name           string   `yaml:"name"`
	Registration   string   `yaml:"registration"`
	NationalID     string   `yaml:"nationalId,omitempty"`
	Contact        string   `yaml:"contact,omitempty"`
	Specialization string   `yaml:"specialization,omitempty"`
	Subjects       []string `yaml:"subjects,omitempty"`
}

// Student is a student entry with its grades and attendance.
type Student struct {
	Name         string       `yaml:"name"`
	Registration string       `yaml:"registration"`
	NationalID   string       `yaml:"nationalId,omitempty"`
	Contact      string       `yaml:"contact,omitempty"`
	BirthDate    string       `yaml:"birthDate,omitempty"`
	Grades       []Grade      `yaml:"grades,omitempty"`
	Attendance   []Attendance `yaml:"attendance,omitempty"`
}

// Grade references its subject by code.
type Grade struct {
	Subject string  `yaml:"subject"`
	Type    string  `yaml:"type"`
	Score   float64 `yaml:"score"`
	Date    string  `yaml:"date"`
}

// Attendance references its subject by code.
type Attendance struct {
	Subject string `yaml:"subject"`
	Date    string `yaml:"date"`
	Present bool   `yaml:"present"`
}

// Section references its subject by code, its teacher and students by
// registration.
type Section struct {
	Name     string      `yaml:"name"`
	Subject  string      `yaml:"subject"`
	Teacher  string      `yaml:"teacher"`
	Shift    model.Shift `yaml:"shift"`
	Year     int         `yaml:"year"`
	Term     int         `yaml:"term"`
	Students []string    `yaml:"students,omitempty"`
}

// Result counts what Apply inserted.
type Result struct {
	Subjects    int `json:"subjects"`
	Teachers    int `json:"teachers"`
	Students    int `json:"students"`
	Sections    int `json:"sections"`
	Enrollments int `json:"enrollments"`
}

// Load reads and parses a dataset file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a dataset, rejecting unknown fields.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &ds, nil
}

// Apply inserts ds into st: subjects, teachers, students, then sections and
// their enrollments. When st already has data Apply returns
// ErrStoreHasData unless force is set, in which case the store is cleared
// first. Apply stops at the first failing insert; earlier inserts stay.
func Apply(ctx context.Context, st *store.Store, ds *Dataset, force bool) (Result, error) {
	var res Result
	if st.HasData() {
		if !force {
			return res, ErrStoreHasData
		}
		if err := st.Clear(ctx); err != nil {
			return res, fmt.Errorf("clear store: %w", err)
		}
	}

	subjects := map[string]string{}
	for _, in := range ds.Subjects {
		sub, err := st.AddSubject(ctx, model.Subject{
			Code: in.Code, Name: in.Name, CreditHours: in.CreditHours, Description: in.Description,
		})
		if err != nil {
			return res, fmt.Errorf("subject %s: %w", in.Code, err)
		}
		subjects[in.Code] = sub.ID
		res.Subjects++
	}
	subjectID := func(code string) (string, error) {
		id, ok := subjects[code]
		if !ok {
			return "", fmt.Errorf("unknown subject code %q", code)
		}
		return id, nil
	}

	teachers := map[string]string{}
	for _, in := range ds.Teachers {
		t := model.Teacher{
			Person: model.Person{
				Name: in.Name, Registration: in.Registration, NationalID: in.NationalID, Contact: in.Contact,
			},
			Specialization: in.Specialization,
		}
		for _, code := range in.Subjects {
			id, err := subjectID(code)
			if err != nil {
				return res, fmt.Errorf("teacher %s: %w", in.Registration, err)
			}
			t.SubjectIDs = append(t.SubjectIDs, id)
		}
		added, err := st.AddTeacher(ctx, t)
		if err != nil {
			return res, fmt.Errorf("teacher %s: %w", in.Registration, err)
		}
		teachers[in.Registration] = added.ID
		res.Teachers++
	}

	students := map[string]string{}
	for _, in := range ds.Students {
		s := model.Student{
			Person: model.Person{
				Name: in.Name, Registration: in.Registration, NationalID: in.NationalID, Contact: in.Contact,
			},
			BirthDate: in.BirthDate,
		}
		for _, g := range in.Grades {
			id, err := subjectID(g.Subject)
			if err != nil {
				return res, fmt.Errorf("student %s: %w", in.Registration, err)
			}
			s.Grades = append(s.Grades, model.Grade{SubjectID: id, AssessmentType: g.Type, Score: g.Score, Date: g.Date})
		}
		for _, a := range in.Attendance {
			id, err := subjectID(a.Subject)
			if err != nil {
				return res, fmt.Errorf("student %s: %w", in.Registration, err)
			}
			s.Attendance = append(s.Attendance, model.Attendance{SubjectID: id, Date: a.Date, Present: a.Present})
		}
		added, err := st.AddStudent(ctx, s)
		if err != nil {
			return res, fmt.Errorf("student %s: %w", in.Registration, err)
		}
		students[in.Registration] = added.ID
		res.Students++
	}

	for _, in := range ds.Sections {
		subID, err := subjectID(in.Subject)
		if err != nil {
			return res, fmt.Errorf("section %s: %w", in.Name, err)
		}
		teacherID, ok := teachers[in.Teacher]
		if !ok {
			return res, fmt.Errorf("section %s: unknown teacher registration %q", in.Name, in.Teacher)
		}
		section, err := st.AddClassSection(ctx, model.ClassSection{
			Name: in.Name, SubjectID: subID, TeacherID: teacherID,
			Shift: in.Shift, Year: in.Year, Term: in.Term,
		})
		if err != nil {
			return res, fmt.Errorf("section %s: %w", in.Name, err)
		}
		res.Sections++

		for _, reg := range in.Students {
			studentID, ok := students[reg]
			if !ok {
				return res, fmt.Errorf("section %s: unknown student registration %q", in.Name, reg)
			}
			if err := st.Enroll(ctx, section.ID, studentID); err != nil {
				return res, fmt.Errorf("section %s: enroll %s: %w", in.Name, reg, err)
			}
			res.Enrollments++
		}
	}

	return res, nil
}
