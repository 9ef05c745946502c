package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/roach88/gradebook/internal/config"
	"github.com/roach88/gradebook/internal/model"
	"github.com/roach88/gradebook/internal/report"
	"github.com/roach88/gradebook/internal/seed"
	"github.com/roach88/gradebook/internal/store"
	"github.com/roach88/gradebook/internal/testutil"
)

// testCLI runs commands against one SQLite file, reopening it on every
// invocation the way separate processes would.
type testCLI struct {
	t     *testing.T
	dir   string
	db    string
	clock *testutil.DeterministicClock
	ids   *store.SequenceGenerator
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	dir := t.TempDir()
	return &testCLI{
		t:     t,
		dir:   dir,
		db:    filepath.Join(dir, "gradebook.db"),
		clock: testutil.NewDeterministicClock(),
		ids:   store.NewSequenceGenerator("id"),
	}
}

func (c *testCLI) run(args ...string) (string, error) {
	c.t.Helper()
	opts := &RootOptions{Clock: c.clock, IDs: c.ids}
	cmd := newRootCommand(opts)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--backend", "sqlite", "--db", c.db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

type jsonResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

func (c *testCLI) runJSON(args ...string) (jsonResponse, error) {
	c.t.Helper()
	out, err := c.run(append([]string{"--format", "json"}, args...)...)
	var resp jsonResponse
	require.NoError(c.t, json.Unmarshal([]byte(out), &resp), out)
	return resp, err
}

// ok runs a command that must succeed and decodes its data into into.
func (c *testCLI) ok(into any, args ...string) {
	c.t.Helper()
	resp, err := c.runJSON(args...)
	require.NoError(c.t, err)
	require.Equal(c.t, "ok", resp.Status)
	if into != nil {
		require.NoError(c.t, json.Unmarshal(resp.Data, into))
	}
}

// fails runs a command that must fail and returns the reported CLI code.
func (c *testCLI) fails(exitCode int, args ...string) *CLIError {
	c.t.Helper()
	resp, err := c.runJSON(args...)
	require.Error(c.t, err)
	assert.Equal(c.t, exitCode, GetExitCode(err))
	require.Equal(c.t, "error", resp.Status)
	require.NotNil(c.t, resp.Error)
	return resp.Error
}

// school creates subject mat, teacher ana, section 1a and student bruno
// enrolled in it.
func (c *testCLI) school() {
	c.t.Helper()
	c.ok(nil, "subject", "add", "--id", "mat", "--code", "MAT001", "--name", "Matemática", "--credit-hours", "60")
	c.ok(nil, "teacher", "add", "--id", "ana", "--name", "Ana Souza", "--registration", "P001", "--subjects", "mat")
	c.ok(nil, "section", "add", "--id", "1a", "--name", "1A", "--subject", "mat", "--teacher", "ana",
		"--shift", "morning", "--year", "2024", "--term", "1")
	c.ok(nil, "student", "add", "--id", "bruno", "--name", "Bruno Lima", "--registration", "A001",
		"--birth-date", "2008-05-14", "--national-id", "529.982.247-25", "--section", "1a")
}

func TestStudentAddEnrollsInSection(t *testing.T) {
	c := newTestCLI(t)
	c.school()

	var st model.Student
	c.ok(&st, "student", "get", "bruno")
	assert.Equal(t, "Bruno Lima", st.Name)
	assert.Equal(t, "1a", st.ClassSectionID)

	var section model.ClassSection
	c.ok(&section, "section", "get", "1a")
	assert.Equal(t, []string{"bruno"}, section.StudentIDs)
}

func TestStudentValidation(t *testing.T) {
	c := newTestCLI(t)
	c.school()

	e := c.fails(ExitFailure, "student", "add", "--registration", "A002")
	assert.Equal(t, ErrCodeValidation, e.Code)

	e = c.fails(ExitFailure, "student", "add", "--name", "Outro", "--registration", "a001")
	assert.Equal(t, ErrCodeValidation, e.Code)
	assert.Contains(t, e.Message, "registration")

	e = c.fails(ExitFailure, "student", "add", "--name", "Carla", "--registration", "A003", "--national-id", "123.456.789-00")
	assert.Equal(t, ErrCodeValidation, e.Code)
	assert.Contains(t, e.Message, "national id")

	e = c.fails(ExitFailure, "student", "get", "nobody")
	assert.Equal(t, ErrCodeNotFound, e.Code)

	var students []model.Student
	c.ok(&students, "student", "list")
	assert.Len(t, students, 1)
}

func TestStudentUpdateAppliesOnlyGivenFlags(t *testing.T) {
	c := newTestCLI(t)
	c.school()

	var st model.Student
	c.ok(&st, "student", "update", "bruno", "--contact", "bruno@example.com")
	assert.Equal(t, "bruno@example.com", st.Contact)
	assert.Equal(t, "Bruno Lima", st.Name)
	assert.Equal(t, "2008-05-14", st.BirthDate)
}

func TestGradesAndStats(t *testing.T) {
	c := newTestCLI(t)
	c.school()

	var g model.Grade
	c.ok(&g, "grade", "add", "bruno", "--subject", "mat", "--type", "prova", "--score", "8", "--date", "2024-04-01")
	assert.Equal(t, "id-1", g.ID)
	c.ok(nil, "grade", "add", "bruno", "--subject", "mat", "--type", "trabalho", "--score", "6", "--date", "2024-05-01")
	for i, present := range []bool{true, true, false, true} {
		args := []string{"attendance", "add", "bruno", "--subject", "mat", "--date", fmt.Sprintf("2024-03-%02d", 4+i)}
		if !present {
			args = append(args, "--absent")
		}
		c.ok(nil, args...)
	}

	var stats StudentStats
	c.ok(&stats, "stats", "bruno")
	assert.Equal(t, 7.0, stats.OverallAverage)
	assert.Equal(t, 75.0, stats.OverallAttendancePercent)
	require.Len(t, stats.Subjects, 1)
	assert.True(t, stats.Subjects[0].Passing)

	var updated model.Grade
	c.ok(&updated, "grade", "update", "bruno", "id-1", "--score", "7.9")
	assert.Equal(t, 7.9, updated.Score)
	assert.Equal(t, "prova", updated.AssessmentType)

	c.ok(&stats, "stats", "bruno", "--subject", "mat")
	assert.Equal(t, 6.95, stats.Subjects[0].Average)
	assert.False(t, stats.Subjects[0].Passing)

	c.ok(nil, "grade", "remove", "bruno", "id-1")
	var grades []model.Grade
	c.ok(&grades, "grade", "list", "bruno")
	require.Len(t, grades, 1)
	assert.Equal(t, "trabalho", grades[0].AssessmentType)

	e := c.fails(ExitFailure, "grade", "add", "bruno", "--subject", "nope", "--type", "prova", "--score", "5", "--date", "2024-04-01")
	assert.Equal(t, ErrCodeValidation, e.Code)
	e = c.fails(ExitFailure, "grade", "remove", "bruno", "id-1")
	assert.Equal(t, ErrCodeNotFound, e.Code)
}

func TestStatsTextOutput(t *testing.T) {
	c := newTestCLI(t)
	c.school()
	c.ok(nil, "grade", "add", "bruno", "--subject", "mat", "--type", "prova", "--score", "9.5", "--date", "2024-04-01")

	out, err := c.run("stats", "bruno")
	require.NoError(t, err)
	assert.Contains(t, out, "Bruno Lima (bruno)")
	assert.Contains(t, out, "Overall average:     9.50")
	assert.Contains(t, out, "MAT001")
	assert.Contains(t, out, "failed")
}

func TestTeacherAssignments(t *testing.T) {
	c := newTestCLI(t)
	c.school()
	c.ok(nil, "subject", "add", "--id", "por", "--code", "POR001", "--name", "Português", "--credit-hours", "80")

	var teacher model.Teacher
	c.ok(&teacher, "teacher", "assign", "ana", "por")
	assert.Equal(t, []string{"mat", "por"}, teacher.SubjectIDs)
	c.ok(&teacher, "teacher", "unassign", "ana", "mat")
	assert.Equal(t, []string{"por"}, teacher.SubjectIDs)

	e := c.fails(ExitFailure, "teacher", "assign", "ana", "nope")
	assert.Equal(t, ErrCodeValidation, e.Code)
}

func TestEnrollMovesStudent(t *testing.T) {
	c := newTestCLI(t)
	c.school()
	c.ok(nil, "section", "add", "--id", "1b", "--name", "1B", "--subject", "mat", "--teacher", "ana",
		"--shift", "evening", "--year", "2024", "--term", "1")

	c.ok(nil, "section", "enroll", "1b", "bruno")

	var a, b model.ClassSection
	c.ok(&a, "section", "get", "1a")
	c.ok(&b, "section", "get", "1b")
	assert.Empty(t, a.StudentIDs)
	assert.Equal(t, []string{"bruno"}, b.StudentIDs)

	c.ok(nil, "section", "unenroll", "1b", "bruno")
	var st model.Student
	c.ok(&st, "student", "get", "bruno")
	assert.Empty(t, st.ClassSectionID)
}

func TestIntegrityCheckAndPrune(t *testing.T) {
	c := newTestCLI(t)
	c.school()

	var rep struct {
		Valid bool `json:"valid"`
	}
	c.ok(&rep, "integrity", "check")
	assert.True(t, rep.Valid)

	c.ok(nil, "section", "remove", "1a")
	e := c.fails(ExitFailure, "integrity", "check")
	assert.Equal(t, ErrCodeIntegrity, e.Code)

	out, err := c.run("integrity", "check")
	require.Error(t, err)
	assert.Contains(t, out, `references missing class section "1a"`)

	var pruned map[string]int
	c.ok(&pruned, "integrity", "prune")
	assert.Equal(t, 1, pruned["removed"])
	c.ok(&rep, "integrity", "check")
	assert.True(t, rep.Valid)
}

func TestRemovalDoesNotCascade(t *testing.T) {
	c := newTestCLI(t)
	c.school()

	c.ok(nil, "subject", "remove", "mat")

	var teacher model.Teacher
	c.ok(&teacher, "teacher", "get", "ana")
	assert.Equal(t, []string{"mat"}, teacher.SubjectIDs)

	var section model.ClassSection
	c.ok(&section, "section", "get", "1a")
	assert.Equal(t, "mat", section.SubjectID)
}

func TestBackupExportImport(t *testing.T) {
	c := newTestCLI(t)
	c.school()
	path := filepath.Join(c.dir, "backup.json")

	var res ExportResult
	c.ok(&res, "backup", "export", "--output", path)
	assert.Equal(t, path, res.Path)
	assert.Positive(t, res.Bytes)

	c.ok(nil, "clear", "--yes")
	var students []model.Student
	c.ok(&students, "student", "list")
	assert.Empty(t, students)

	var restored RestoreResult
	c.ok(&restored, "backup", "import", path)
	assert.Equal(t, RestoreResult{Version: "1.0", Students: 1, Teachers: 1, ClassSections: 1, Subjects: 1}, restored)

	var st model.Student
	c.ok(&st, "student", "get", "bruno")
	assert.Equal(t, "Bruno Lima", st.Name)
}

func TestBackupExportToStdout(t *testing.T) {
	c := newTestCLI(t)
	c.school()

	out, err := c.run("backup", "export", "--output", "-")
	require.NoError(t, err)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.JSONEq(t, `"1.0"`, string(env["version"]))
	assert.Contains(t, string(env["data"]), "Bruno Lima")
}

func TestBackendFlagOverridesInvalidEnv(t *testing.T) {
	t.Setenv(config.EnvBackend, "bogus")
	c := newTestCLI(t)

	c.ok(nil, "status")

	_, err := resolveConfig(&RootOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestBackupImportReportsEnvelopeVersion(t *testing.T) {
	c := newTestCLI(t)

	path := filepath.Join(c.dir, "v2.json")
	body := `{"version":"2.0","data":{"students":[],"teachers":[],"classSections":[],"subjects":[{"id":"geo","code":"GEO01","name":"Geografia","creditHours":2}]}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	var restored RestoreResult
	c.ok(&restored, "backup", "import", path)
	assert.Equal(t, "2.0", restored.Version)
	assert.Equal(t, 1, restored.Subjects)
}

func TestBackupImportMalformed(t *testing.T) {
	c := newTestCLI(t)
	c.school()

	path := filepath.Join(c.dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": "1.0"}`), 0644))

	e := c.fails(ExitFailure, "backup", "import", path)
	assert.Equal(t, ErrCodeMalformedBackup, e.Code)
	assert.Contains(t, e.Message, "missing data")

	var students []model.Student
	c.ok(&students, "student", "list")
	assert.Len(t, students, 1)

	e = c.fails(ExitCommandError, "backup", "import", filepath.Join(c.dir, "missing.json"))
	assert.Equal(t, ErrCodeReadFile, e.Code)
}

func TestBackupImportFromStdin(t *testing.T) {
	c := newTestCLI(t)
	c.school()
	envelope, err := c.run("backup", "export", "--output", "-")
	require.NoError(t, err)
	c.ok(nil, "clear", "--yes")

	opts := &RootOptions{Clock: c.clock, IDs: c.ids, Stdin: strings.NewReader(envelope)}
	cmd := newRootCommand(opts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--backend", "sqlite", "--db", c.db, "backup", "import", "-"})
	require.NoError(t, cmd.Execute())

	var st model.Student
	c.ok(&st, "student", "get", "bruno")
	assert.Equal(t, "1a", st.ClassSectionID)
}

func TestClearRequiresConfirmation(t *testing.T) {
	c := newTestCLI(t)
	c.school()

	e := c.fails(ExitCommandError, "clear")
	assert.Equal(t, ErrCodeUsage, e.Code)

	var status StatusResult
	c.ok(&status, "status")
	assert.Equal(t, 1, status.Students)
}

func TestSeed(t *testing.T) {
	c := newTestCLI(t)
	file := filepath.Join("..", "seed", "testdata", "school.yaml")

	var res seed.Result
	c.ok(&res, "seed", file)
	assert.Equal(t, seed.Result{Subjects: 2, Teachers: 2, Students: 2, Sections: 2, Enrollments: 2}, res)

	e := c.fails(ExitFailure, "seed", file)
	assert.Equal(t, ErrCodeHasData, e.Code)

	c.ok(&res, "seed", "--force", file)
	assert.Equal(t, 2, res.Students)

	var status StatusResult
	c.ok(&status, "status")
	assert.Equal(t, "sqlite", status.Backend)
	assert.Equal(t, c.db, status.Path)
	assert.Equal(t, 2, status.Students)
	assert.Equal(t, 4, status.AttendanceRecords)
	assert.True(t, status.Integrity.Valid)
}

func TestSectionReportWorkbook(t *testing.T) {
	c := newTestCLI(t)
	c.ok(nil, "seed", filepath.Join("..", "seed", "testdata", "school.yaml"))

	var sections []model.ClassSection
	c.ok(&sections, "section", "list")
	var sectionID string
	for _, s := range sections {
		if s.Name == "1A" {
			sectionID = s.ID
		}
	}
	require.NotEmpty(t, sectionID)

	path := filepath.Join(c.dir, "1a.xlsx")
	var rollup model.SectionReport
	c.ok(&rollup, "section", "report", sectionID, "--output", path)
	assert.Equal(t, 2, rollup.TotalStudents)
	assert.Equal(t, 1, rollup.Passed)
	assert.Equal(t, 1, rollup.Failed)
	assert.Equal(t, 50.0, rollup.PassPercent)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(report.StudentsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Bruno Lima", rows[1][1])
	assert.Equal(t, report.StatusPassed, rows[1][4])
}

func TestStudentImportRoster(t *testing.T) {
	c := newTestCLI(t)
	c.school()

	f := excelize.NewFile()
	rows := [][]any{
		{"Name", "Registration", "National ID", "Birth date", "Contact"},
		{"Carla Dias", "A002", "111.444.777-35", "2008-02-10", "carla@example.com"},
		{"Davi Rocha", "A003", "123.456.789-00", "", ""},
		{"Elisa Prado", "A001", "", "", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(c.dir, "roster.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	var res ImportResult
	c.ok(&res, "student", "import", path, "--section", "1a")
	assert.Len(t, res.Imported, 1)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, 3, res.Skipped[0].Line)
	assert.Equal(t, 4, res.Skipped[1].Line)

	var section model.ClassSection
	c.ok(&section, "section", "get", "1a")
	assert.Equal(t, []string{"bruno", res.Imported[0]}, section.StudentIDs)
}

func TestStudentListText(t *testing.T) {
	c := newTestCLI(t)
	c.school()
	c.ok(nil, "student", "add", "--name", "Álvaro Nunes", "--registration", "A010")

	out, err := c.run("student", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "REGISTRATION")
	assert.Contains(t, lines[1], "Álvaro Nunes")
	assert.Contains(t, lines[2], "Bruno Lima")
}

func TestStudentUpdateSectionMovesRoster(t *testing.T) {
	c := newTestCLI(t)
	c.school()
	c.ok(nil, "section", "add", "--id", "1b", "--name", "1B", "--subject", "mat", "--teacher", "ana",
		"--shift", "evening", "--year", "2024", "--term", "1")

	c.ok(nil, "student", "update", "bruno", "--section", "1b")

	var a, b model.ClassSection
	c.ok(&a, "section", "get", "1a")
	c.ok(&b, "section", "get", "1b")
	assert.Empty(t, a.StudentIDs)
	assert.Equal(t, []string{"bruno"}, b.StudentIDs)
}
