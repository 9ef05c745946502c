package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/gradebook/internal/model"
	"github.com/roach88/gradebook/internal/report"
)

// StudentStats is the output of the stats command.
type StudentStats struct {
	StudentID                string                 `json:"studentId"`
	Name                     string                 `json:"name"`
	OverallAverage           float64                `json:"overallAverage"`
	OverallAttendancePercent float64                `json:"overallAttendancePercent"`
	Subjects                 []model.StudentSummary `json:"subjects"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <student-id>",
		Short: "Averages, attendance and pass/fail for a student",
		Long: `Show a student's overall average and attendance, plus a per-subject
breakdown for every subject with grades or attendance.

A subject is passed when the average rounded to two decimals is at least 7
and the attendance percentage rounded to two decimals is at least 75.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			st, ok := s.store.GetStudent(args[0])
			if !ok {
				return s.notFound(model.KindStudent, args[0])
			}

			var subjectIDs []string
			if subjectID, _ := cmd.Flags().GetString("subject"); subjectID != "" {
				subjectIDs = []string{subjectID}
			} else {
				subjectIDs = touchedSubjects(st)
			}

			stats := StudentStats{
				StudentID:                st.ID,
				Name:                     st.Name,
				OverallAverage:           model.OverallAverage(st),
				OverallAttendancePercent: model.OverallAttendancePercent(st),
				Subjects:                 []model.StudentSummary{},
			}
			for _, id := range subjectIDs {
				stats.Subjects = append(stats.Subjects, model.Summarize(st, id))
			}

			return s.out.Render(stats, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%s)\n", st.Name, st.ID)
				fmt.Fprintf(w, "  Overall average:     %s\n", model.FormatScore(stats.OverallAverage))
				fmt.Fprintf(w, "  Overall attendance:  %s%%\n", model.FormatScore(stats.OverallAttendancePercent))
				if len(stats.Subjects) == 0 {
					return
				}
				fmt.Fprintln(w)
				tw := table(w)
				fmt.Fprintln(tw, "SUBJECT\tAVERAGE\tATTENDANCE\tSTATUS")
				for _, sum := range stats.Subjects {
					fmt.Fprintf(tw, "%s\t%s\t%s%%\t%s\n", s.subjectLabel(sum.SubjectID),
						model.FormatScore(sum.Average), model.FormatScore(sum.AttendancePercent), report.Status(sum))
				}
				tw.Flush()
			})
		},
	}
	cmd.Flags().String("subject", "", "restrict to one subject id")
	return cmd
}

// touchedSubjects lists subject ids from the student's grades and attendance
// in first-seen order.
func touchedSubjects(st model.Student) []string {
	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, g := range st.Grades {
		add(g.SubjectID)
	}
	for _, a := range st.Attendance {
		add(a.SubjectID)
	}
	return ids
}

func (s *session) subjectLabel(id string) string {
	if sub, ok := s.store.GetSubject(id); ok {
		return sub.Code
	}
	return id
}
