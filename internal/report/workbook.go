package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/roach88/gradebook/internal/model"
)

// Sheet names used by WriteSectionWorkbook.
const (
	StudentsSheet = "Students"
	SummarySheet  = "Summary"
)

// Status labels written to the students sheet.
const (
	StatusPassed   = "passed"
	StatusFailed   = "failed"
	StatusNoGrades = "no grades"
)

// WriteSectionWorkbook writes an XLSX report for one section and subject:
// a row per enrolled student, sorted by name, and a summary sheet built
// from model.SectionRollup.
func WriteSectionWorkbook(w io.Writer, section model.ClassSection, subject model.Subject, students []model.Student) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", StudentsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	enrolled := enrolledStudents(section, students)
	SortStudents(enrolled)

	header := []any{"Registration", "Name", "Average", "Attendance %", "Status"}
	if err := f.SetSheetRow(StudentsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, st := range enrolled {
		sum := model.Summarize(st, subject.ID)
		row := []any{st.Registration, st.Name, sum.Average, sum.AttendancePercent, Status(sum)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(StudentsSheet, cell, &row); err != nil {
			return fmt.Errorf("write student row: %w", err)
		}
	}
	if err := f.SetRowStyle(StudentsSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(StudentsSheet, "B", "B", 32); err != nil {
		return fmt.Errorf("size columns: %w", err)
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	rollup := model.SectionRollup(section, students, subject.ID)
	summary := [][]any{
		{"Section", section.Name},
		{"Subject", subject.Code + " " + subject.Name},
		{"Shift", string(section.Shift)},
		{"Year", section.Year},
		{"Term", section.Term},
		{"Enrolled", rollup.TotalStudents},
		{"With grades", rollup.StudentsWithGrade},
		{"Class average", rollup.ClassAverage},
		{"Highest score", rollup.HighestScore},
		{"Lowest score", rollup.LowestScore},
		{"Passed", rollup.Passed},
		{"Failed", rollup.Failed},
		{"Pass %", rollup.PassPercent},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", 16); err != nil {
		return fmt.Errorf("size columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func enrolledStudents(section model.ClassSection, students []model.Student) []model.Student {
	byID := make(map[string]model.Student, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}
	out := []model.Student{}
	for _, id := range section.StudentIDs {
		if st, ok := byID[id]; ok {
			out = append(out, st)
		}
	}
	return out
}

// Status returns the label written for sum on the students sheet.
func Status(sum model.StudentSummary) string {
	switch {
	case !sum.HasGrades:
		return StatusNoGrades
	case sum.Passing:
		return StatusPassed
	default:
		return StatusFailed
	}
}

// RosterRow is one student read from a roster spreadsheet.
type RosterRow struct {
	Line         int
	Name         string
	Registration string
	NationalID   string
	BirthDate    string
	Contact      string
}

// Student converts the row into a new student record.
func (r RosterRow) Student() model.Student {
	return model.Student{
		Person: model.Person{
			Name:         r.Name,
			Registration: r.Registration,
			NationalID:   r.NationalID,
			Contact:      r.Contact,
		},
		BirthDate: r.BirthDate,
	}
}

// ReadRoster reads the first sheet of an XLSX roster. The first row is a
// header. Columns are name, registration, national id, birth date
// (YYYY-MM-DD) and contact. Rows with neither a name nor a registration
// are skipped.
func ReadRoster(r io.Reader) ([]RosterRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("roster has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read roster sheet %s: %w", sheet, err)
	}

	out := []RosterRow{}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		rr := RosterRow{
			Line:         i + 1,
			Name:         column(row, 0),
			Registration: column(row, 1),
			NationalID:   column(row, 2),
			BirthDate:    column(row, 3),
			Contact:      column(row, 4),
		}
		if rr.Name == "" && rr.Registration == "" {
			continue
		}
		out = append(out, rr)
	}
	return out, nil
}

func column(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
