package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gradebook/internal/model"
	"github.com/roach88/gradebook/internal/persist"
	"github.com/roach88/gradebook/internal/testutil"
)

func TestNew_EmptyBackendStartsEmpty(t *testing.T) {
	s, backend := newTestStore(t)

	assert.False(t, s.HasData())
	assert.Equal(t, 0, backend.Saves(), "opening does not write")

	snap := s.Snapshot()
	assert.NotNil(t, snap.Students)
	assert.NotNil(t, snap.Teachers)
	assert.NotNil(t, snap.ClassSections)
	assert.NotNil(t, snap.Subjects)
}

func TestNew_LoadsPersistedSnapshot(t *testing.T) {
	ctx := context.Background()
	backend := persist.NewMemory()
	body, err := marshalSnapshot(testutil.SampleSnapshot())
	require.NoError(t, err)
	require.NoError(t, backend.Save(ctx, body))

	s, err := New(ctx, backend)
	require.NoError(t, err)

	assert.True(t, s.HasData())
	st, ok := s.GetStudent(testutil.StudentID)
	require.True(t, ok)
	assert.Len(t, st.Grades, 2)
	assert.Len(t, st.Attendance, 4)
}

func TestNew_CorruptSnapshotFails(t *testing.T) {
	ctx := context.Background()
	backend := persist.NewMemory()
	require.NoError(t, backend.Save(ctx, []byte("{not json")))

	_, err := New(ctx, backend)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open store")
}

func TestNew_BackendErrorIsReturned(t *testing.T) {
	_, err := New(context.Background(), failingLoader{err: errors.New("disk gone")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

type failingLoader struct{ err error }

func (f failingLoader) Load(context.Context) ([]byte, error) { return nil, f.err }
func (f failingLoader) Save(context.Context, []byte) error   { return f.err }
func (f failingLoader) Close() error                         { return nil }

func TestStore_EveryMutationWritesThrough(t *testing.T) {
	s, backend := newTestStore(t)
	seedFixture(t, s)

	// subject, teacher, section, student, enroll
	assert.Equal(t, 5, backend.Saves())

	reopened, err := New(context.Background(), backend)
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), reopened.Snapshot())
}

func TestStore_FailedWriteKeepsChangeInMemory(t *testing.T) {
	s, backend := newTestStore(t)
	backend.FailSaves(errors.New("quota exceeded"))

	st, err := s.AddStudent(context.Background(), newStudent("Carla", "A010"))

	require.Error(t, err)
	assert.True(t, model.IsPersistence(err))
	assert.Contains(t, err.Error(), "quota exceeded")
	got, ok := s.GetStudent(st.ID)
	require.True(t, ok, "write-through keeps the in-memory change")
	assert.Equal(t, "Carla", got.Name)
}

func TestStore_LastModifiedStampedOnWrite(t *testing.T) {
	s, _ := newTestStore(t)
	before := s.Stats().LastModified

	_, err := s.AddStudent(context.Background(), newStudent("Carla", "A010"))
	require.NoError(t, err)

	after := s.Stats().LastModified
	assert.NotEqual(t, before, after)
	assert.Equal(t, model.Timestamp(testutil.Epoch.Add(time.Second)), after)
}

func TestStore_Clear(t *testing.T) {
	s, backend := newTestStore(t)
	seedFixture(t, s)
	saves := backend.Saves()

	require.NoError(t, s.Clear(context.Background()))

	assert.False(t, s.HasData())
	assert.Equal(t, saves+1, backend.Saves())
	assert.NotEmpty(t, s.Stats().LastModified)
}

func TestStore_SnapshotIsDeepCopy(t *testing.T) {
	s, _ := newTestStore(t)
	f := seedFixture(t, s)

	snap := s.Snapshot()
	snap.Students[0].Name = "changed"
	snap.ClassSections[0].StudentIDs[0] = "changed"

	st, _ := s.GetStudent(f.student.ID)
	assert.Equal(t, "Bruno Lima", st.Name)
	c, _ := s.GetClassSection(f.section.ID)
	assert.Equal(t, []string{f.student.ID}, c.StudentIDs)
}

func TestStore_Replace(t *testing.T) {
	s, backend := newTestStore(t)
	seedFixture(t, s)

	require.NoError(t, s.Replace(context.Background(), testutil.SampleSnapshot()))

	assert.Len(t, s.ListStudents(), 1)
	_, ok := s.GetStudent(testutil.StudentID)
	assert.True(t, ok)
	assert.Equal(t, 6, backend.Saves())
}

func TestStore_CheckAndPruneOrphans(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	f := seedFixture(t, s)

	require.NoError(t, s.RemoveClassSection(ctx, f.section.ID))

	report := s.CheckIntegrity()
	require.False(t, report.Valid)
	require.Len(t, report.Problems, 1)
	assert.Equal(t, f.student.ID, report.Problems[0].ID)

	removed, err := s.PruneOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.True(t, s.CheckIntegrity().Valid)

	removed, err = s.PruneOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestStore_Stats(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	f := seedFixture(t, s)
	_, err := s.AddAttendance(ctx, f.student.ID, model.Attendance{SubjectID: f.subject.ID, Date: "2024-03-04", Present: true})
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 1, stats.Students)
	assert.Equal(t, 1, stats.Teachers)
	assert.Equal(t, 1, stats.ClassSections)
	assert.Equal(t, 1, stats.Subjects)
	assert.Equal(t, 1, stats.AttendanceRecords)
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s, backend := newTestStore(t)
	const n = 20

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := s.AddStudent(context.Background(), newStudent(fmt.Sprintf("S%d", i), fmt.Sprintf("R%03d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.ListStudents(), n)
	assert.Equal(t, n, backend.Saves())
}
