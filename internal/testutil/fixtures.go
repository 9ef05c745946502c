package testutil

import "github.com/roach88/gradebook/internal/model"

// Fixed identifiers used by SampleSnapshot.
const (
	SubjectID = "subj-mat001"
	TeacherID = "teach-1"
	SectionID = "sect-1"
	StudentID = "stud-1"
)

// SampleSnapshot returns a small consistent dataset: subject MAT001 taught by
// one teacher in one morning section with one enrolled student holding two
// grades (8.0 and 6.0) and four attendance entries, three of them present.
func SampleSnapshot() model.Snapshot {
	snap := model.Snapshot{
		Subjects: []model.Subject{
			{ID: SubjectID, Code: "MAT001", Name: "Matemática", CreditHours: 60},
		},
		Teachers: []model.Teacher{
			{
				Person:         model.Person{ID: TeacherID, Name: "Ana Souza", Registration: "P001"},
				Specialization: "Matemática",
				SubjectIDs:     []string{SubjectID},
			},
		},
		ClassSections: []model.ClassSection{
			{
				ID: SectionID, Name: "1A", SubjectID: SubjectID, TeacherID: TeacherID,
				Shift: model.ShiftMorning, Year: 2024, Term: 1,
				StudentIDs: []string{StudentID},
			},
		},
		Students: []model.Student{
			{
				Person:         model.Person{ID: StudentID, Name: "Bruno Lima", Registration: "A001"},
				BirthDate:      "2008-05-14",
				ClassSectionID: SectionID,
				Grades: []model.Grade{
					{ID: "g-1", SubjectID: SubjectID, AssessmentType: "prova", Score: 8.0, Date: "2024-04-01"},
					{ID: "g-2", SubjectID: SubjectID, AssessmentType: "trabalho", Score: 6.0, Date: "2024-05-01"},
				},
				Attendance: []model.Attendance{
					{ID: "a-1", SubjectID: SubjectID, Date: "2024-03-04", Present: true},
					{ID: "a-2", SubjectID: SubjectID, Date: "2024-03-05", Present: true},
					{ID: "a-3", SubjectID: SubjectID, Date: "2024-03-06", Present: false},
					{ID: "a-4", SubjectID: SubjectID, Date: "2024-03-07", Present: true},
				},
			},
		},
		LastModified: model.Timestamp(Epoch),
	}
	snap.Normalize()
	return snap
}
