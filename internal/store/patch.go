package store

import "github.com/roach88/gradebook/internal/model"

// Patches carry a partial field set for Update operations. A nil field is
// left unchanged; a non-nil field overwrites the stored value.

// PersonPatch updates the fields shared by students and teachers.
type PersonPatch struct {
	Name         *string
	Registration *string
	NationalID   *string
	Contact      *string
}

func (p PersonPatch) apply(dst *model.Person) {
	setString(&dst.Name, p.Name)
	setString(&dst.Registration, p.Registration)
	setString(&dst.NationalID, p.NationalID)
	setString(&dst.Contact, p.Contact)
}

// StudentPatch updates a student. Grades and attendance have their own
// operations.
type StudentPatch struct {
	PersonPatch
	BirthDate      *string
	ClassSectionID *string
}

func (p StudentPatch) apply(dst *model.Student) {
	p.PersonPatch.apply(&dst.Person)
	setString(&dst.BirthDate, p.BirthDate)
	setString(&dst.ClassSectionID, p.ClassSectionID)
}

// TeacherPatch updates a teacher. SubjectIDs replaces the whole set.
type TeacherPatch struct {
	PersonPatch
	Specialization *string
	SubjectIDs     *[]string
}

func (p TeacherPatch) apply(dst *model.Teacher) {
	p.PersonPatch.apply(&dst.Person)
	setString(&dst.Specialization, p.Specialization)
	if p.SubjectIDs != nil {
		dst.SubjectIDs = append([]string{}, (*p.SubjectIDs)...)
	}
}

// SubjectPatch updates a subject.
type SubjectPatch struct {
	Code        *string
	Name        *string
	CreditHours *int
	Description *string
}

func (p SubjectPatch) apply(dst *model.Subject) {
	setString(&dst.Code, p.Code)
	setString(&dst.Name, p.Name)
	setInt(&dst.CreditHours, p.CreditHours)
	setString(&dst.Description, p.Description)
}

// ClassSectionPatch updates a class section. The roster changes only
// through Enroll and Unenroll.
type ClassSectionPatch struct {
	Name      *string
	SubjectID *string
	TeacherID *string
	Shift     *model.Shift
	Year      *int
	Term      *int
}

func (p ClassSectionPatch) apply(dst *model.ClassSection) {
	setString(&dst.Name, p.Name)
	setString(&dst.SubjectID, p.SubjectID)
	setString(&dst.TeacherID, p.TeacherID)
	if p.Shift != nil {
		dst.Shift = *p.Shift
	}
	setInt(&dst.Year, p.Year)
	setInt(&dst.Term, p.Term)
}

// GradePatch updates one grade entry.
type GradePatch struct {
	SubjectID      *string
	AssessmentType *string
	Score          *float64
	Date           *string
}

func (p GradePatch) apply(dst *model.Grade) {
	setString(&dst.SubjectID, p.SubjectID)
	setString(&dst.AssessmentType, p.AssessmentType)
	if p.Score != nil {
		dst.Score = *p.Score
	}
	setString(&dst.Date, p.Date)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
