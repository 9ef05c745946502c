package store

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gradebook/internal/testutil"
)

func TestMarshalSnapshot_KeyOrder(t *testing.T) {
	body, err := marshalSnapshot(testutil.SampleSnapshot())
	require.NoError(t, err)

	var keys []string
	dec := json.NewDecoder(bytes.NewReader(body))
	_, err = dec.Token() // {
	require.NoError(t, err)
	for dec.More() {
		tok, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		require.NoError(t, dec.Decode(&skip))
	}
	assert.Equal(t, []string{"students", "teachers", "classSections", "subjects", "attendanceRecords", "lastModified"}, keys)
}

func TestUnmarshalSnapshot_NullCollectionsBecomeEmpty(t *testing.T) {
	snap, err := unmarshalSnapshot([]byte(`{"students":null,"lastModified":"x"}`))
	require.NoError(t, err)

	assert.NotNil(t, snap.Students)
	assert.NotNil(t, snap.Teachers)
	assert.NotNil(t, snap.ClassSections)
	assert.NotNil(t, snap.Subjects)
	assert.False(t, snap.HasData())
}

func TestUnmarshalSnapshot_IgnoresFlatAttendance(t *testing.T) {
	body := []byte(`{
		"students": [{"id": "s1", "name": "A", "registration": "1", "attendance": []}],
		"teachers": [], "classSections": [], "subjects": [],
		"attendanceRecords": [{"id": "a1", "subjectId": "x", "date": "2024-01-01", "present": true, "studentId": "s1"}]
	}`)

	snap, err := unmarshalSnapshot(body)
	require.NoError(t, err)
	require.Len(t, snap.Students, 1)
	assert.Empty(t, snap.Students[0].Attendance)
	assert.Empty(t, snap.AttendanceRecords())
}

func TestMarshalSnapshot_RoundTrip(t *testing.T) {
	want := testutil.SampleSnapshot()
	body, err := marshalSnapshot(want)
	require.NoError(t, err)

	got, err := unmarshalSnapshot(body)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
