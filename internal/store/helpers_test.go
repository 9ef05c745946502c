package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/gradebook/internal/model"
	"github.com/roach88/gradebook/internal/persist"
	"github.com/roach88/gradebook/internal/testutil"
)

// newTestStore creates a store over an in-memory backend with a
// deterministic clock and sequential ids.
func newTestStore(t *testing.T, opts ...Option) (*Store, *persist.Memory) {
	t.Helper()
	backend := persist.NewMemory()
	opts = append([]Option{
		WithClock(testutil.NewDeterministicClock()),
		WithIDGenerator(NewSequenceGenerator("id")),
	}, opts...)
	s, err := New(context.Background(), backend, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, backend
}

// fixture holds the ids created by seedFixture.
type fixture struct {
	subject model.Subject
	teacher model.Teacher
	section model.ClassSection
	student model.Student
}

// seedFixture builds MAT001 / one teacher / one section / one enrolled
// student through the public API.
func seedFixture(t *testing.T, s *Store) fixture {
	t.Helper()
	ctx := context.Background()

	subject, err := s.AddSubject(ctx, model.Subject{Code: "MAT001", Name: "Matemática", CreditHours: 60})
	require.NoError(t, err)

	teacher, err := s.AddTeacher(ctx, model.Teacher{
		Person:     model.Person{Name: "Ana Souza", Registration: "P001"},
		SubjectIDs: []string{subject.ID},
	})
	require.NoError(t, err)

	section, err := s.AddClassSection(ctx, model.ClassSection{
		Name: "1A", SubjectID: subject.ID, TeacherID: teacher.ID,
		Shift: model.ShiftMorning, Year: 2024, Term: 1,
	})
	require.NoError(t, err)

	student, err := s.AddStudent(ctx, model.Student{
		Person:    model.Person{Name: "Bruno Lima", Registration: "A001"},
		BirthDate: "2008-05-14",
	})
	require.NoError(t, err)

	require.NoError(t, s.Enroll(ctx, section.ID, student.ID))
	student, _ = s.GetStudent(student.ID)
	section, _ = s.GetClassSection(section.ID)

	return fixture{subject: subject, teacher: teacher, section: section, student: student}
}

func newStudent(name, registration string) model.Student {
	return model.Student{Person: model.Person{Name: name, Registration: registration}}
}

func ptr[T any](v T) *T { return &v }
