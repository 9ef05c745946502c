package model

import (
	"math"
	"strconv"
	"strings"
)

// Pass/fail policy. Both are fixed domain constants.
const (
	PassGradeThreshold      = 7.0
	PassAttendanceThreshold = 75.0
)

// Round2 rounds v to two decimal places the way a fixed-point formatter
// does: the exact binary value is inspected and ties go away from zero.
// The result is the parsed value of the two-decimal string, so 1.005
// (stored as 1.00499...) becomes 1.00 and 0.125 becomes 0.13.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	neg := v < 0
	if neg {
		v = -v
	}

	// 'f' with a large precision prints the exact decimal expansion for
	// any value a score or percentage can take.
	exact := strconv.FormatFloat(v, 'f', 100, 64)
	dot := strings.IndexByte(exact, '.')
	digits := exact[:dot] + exact[dot+1:dot+3]
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		// Out of int64 range; these magnitudes have no fractional part.
		if neg {
			return -v
		}
		return v
	}
	if exact[dot+3] >= '5' {
		n++
	}

	out, _ := strconv.ParseFloat(strconv.FormatInt(n/100, 10)+"."+twoDigits(n%100), 64)
	if neg && out != 0 {
		return -out
	}
	return out
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// FormatScore renders an already rounded value with exactly two decimals.
func FormatScore(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', 2, 64)
}

// AverageForSubject is the mean score of the student's grades in subjectID,
// rounded to two decimals. Returns 0 when the student has no such grades.
func AverageForSubject(s Student, subjectID string) float64 {
	var sum float64
	var n int
	for _, g := range s.Grades {
		if g.SubjectID == subjectID {
			sum += g.Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return Round2(sum / float64(n))
}

// OverallAverage is the mean of every grade regardless of subject.
func OverallAverage(s Student) float64 {
	if len(s.Grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range s.Grades {
		sum += g.Score
	}
	return Round2(sum / float64(len(s.Grades)))
}

// AttendancePercentForSubject is 100*present/total over the student's
// attendance in subjectID, rounded to two decimals; 0 when there is none.
func AttendancePercentForSubject(s Student, subjectID string) float64 {
	var present, total int
	for _, a := range s.Attendance {
		if a.SubjectID != subjectID {
			continue
		}
		total++
		if a.Present {
			present++
		}
	}
	return percent(present, total)
}

// OverallAttendancePercent is AttendancePercentForSubject without the filter.
func OverallAttendancePercent(s Student) float64 {
	var present int
	for _, a := range s.Attendance {
		if a.Present {
			present++
		}
	}
	return percent(present, len(s.Attendance))
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round2(100 * float64(part) / float64(total))
}

// HasGrades reports whether the student has at least one grade in subjectID.
func HasGrades(s Student, subjectID string) bool {
	for _, g := range s.Grades {
		if g.SubjectID == subjectID {
			return true
		}
	}
	return false
}

// IsPassing compares the rounded subject average and attendance percentage
// against the pass thresholds. A student without grades never passes.
func IsPassing(s Student, subjectID string) bool {
	return AverageForSubject(s, subjectID) >= PassGradeThreshold &&
		AttendancePercentForSubject(s, subjectID) >= PassAttendanceThreshold
}

// StudentSummary is the per-subject view of one student used by reports.
type StudentSummary struct {
	StudentID         string  `json:"studentId"`
	Name              string  `json:"name"`
	SubjectID         string  `json:"subjectId"`
	Average           float64 `json:"average"`
	AttendancePercent float64 `json:"attendancePercent"`
	Passing           bool    `json:"passing"`
	HasGrades         bool    `json:"hasGrades"`
}

// Summarize computes the StudentSummary of s for subjectID.
func Summarize(s Student, subjectID string) StudentSummary {
	return StudentSummary{
		StudentID:         s.ID,
		Name:              s.Name,
		SubjectID:         subjectID,
		Average:           AverageForSubject(s, subjectID),
		AttendancePercent: AttendancePercentForSubject(s, subjectID),
		Passing:           IsPassing(s, subjectID),
		HasGrades:         HasGrades(s, subjectID),
	}
}

// SectionReport is the class-level rollup for one subject.
//
// Every statistic except TotalStudents covers only enrolled students with
// at least one grade in the subject.
type SectionReport struct {
	SectionID         string  `json:"sectionId"`
	SectionName       string  `json:"sectionName"`
	SubjectID         string  `json:"subjectId"`
	TotalStudents     int     `json:"totalStudents"`
	StudentsWithGrade int     `json:"studentsWithGrades"`
	ClassAverage      float64 `json:"classAverage"`
	HighestScore      float64 `json:"highestScore"`
	LowestScore       float64 `json:"lowestScore"`
	Passed            int     `json:"passed"`
	Failed            int     `json:"failed"`
	PassPercent       float64 `json:"passPercent"`
}

// SectionRollup aggregates the grades of the section's enrolled students in
// subjectID. students is the pool to resolve section.StudentIDs against;
// ids that do not resolve are counted as enrolled but contribute nothing.
func SectionRollup(section ClassSection, students []Student, subjectID string) SectionReport {
	report := SectionReport{
		SectionID:     section.ID,
		SectionName:   section.Name,
		SubjectID:     subjectID,
		TotalStudents: len(section.StudentIDs),
	}

	byID := make(map[string]Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}

	var avgSum float64
	first := true
	for _, id := range section.StudentIDs {
		s, ok := byID[id]
		if !ok || !HasGrades(s, subjectID) {
			continue
		}
		report.StudentsWithGrade++
		avgSum += AverageForSubject(s, subjectID)
		for _, g := range s.Grades {
			if g.SubjectID != subjectID {
				continue
			}
			if first || g.Score > report.HighestScore {
				report.HighestScore = g.Score
			}
			if first || g.Score < report.LowestScore {
				report.LowestScore = g.Score
			}
			first = false
		}
		if IsPassing(s, subjectID) {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	if report.StudentsWithGrade > 0 {
		report.ClassAverage = Round2(avgSum / float64(report.StudentsWithGrade))
		report.PassPercent = percent(report.Passed, report.StudentsWithGrade)
	}
	return report
}
