package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/gradebook/internal/model"
	"github.com/roach88/gradebook/internal/store"
)

// NewGradeCommand creates the grade command group. Grades belong to a
// student, so every subcommand takes the student id first.
func NewGradeCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Record and correct student grades",
	}
	cmd.AddCommand(newGradeAddCommand(opts))
	cmd.AddCommand(newGradeUpdateCommand(opts))
	cmd.AddCommand(newGradeRemoveCommand(opts))
	cmd.AddCommand(newGradeListCommand(opts))
	return cmd
}

func addGradeFlags(cmd *cobra.Command) {
	cmd.Flags().String("subject", "", "subject id")
	cmd.Flags().String("type", "", "assessment type, e.g. prova or trabalho")
	cmd.Flags().Float64("score", 0, "score (0 or more)")
	cmd.Flags().String("date", "", "assessment date (YYYY-MM-DD)")
}

func newGradeAddCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "add <student-id>",
		Short:         "Record a grade",
		Example:       `  gradebook grade add stud-1 --subject subj-1 --type prova --score 8.5 --date 2024-04-01`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var g model.Grade
			g.SubjectID, _ = cmd.Flags().GetString("subject")
			g.AssessmentType, _ = cmd.Flags().GetString("type")
			g.Score, _ = cmd.Flags().GetFloat64("score")
			g.Date, _ = cmd.Flags().GetString("date")

			added, err := s.store.AddGrade(s.ctx, args[0], g)
			if err != nil {
				return s.fail("add grade", err)
			}
			return s.out.Render(added, func(w io.Writer) {
				fmt.Fprintf(w, "Added grade %s: %s %s = %s\n", added.ID, added.SubjectID, added.AssessmentType, model.FormatScore(added.Score))
			})
		},
	}
	addGradeFlags(cmd)
	return cmd
}

func newGradeUpdateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "update <student-id> <grade-id>",
		Short:         "Correct a grade; only the flags given are applied",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			updated, err := s.store.UpdateGrade(s.ctx, args[0], args[1], store.GradePatch{
				SubjectID:      changedString(cmd, "subject"),
				AssessmentType: changedString(cmd, "type"),
				Score:          changedFloat(cmd, "score"),
				Date:           changedString(cmd, "date"),
			})
			if err != nil {
				return s.fail("update grade", err)
			}
			return s.out.Render(updated, func(w io.Writer) {
				fmt.Fprintf(w, "Updated grade %s\n", updated.ID)
			})
		},
	}
	addGradeFlags(cmd)
	return cmd
}

func newGradeRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <student-id> <grade-id>",
		Short:         "Delete a grade",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.RemoveGrade(s.ctx, args[0], args[1]); err != nil {
				return s.fail("remove grade", err)
			}
			return s.out.Render(map[string]string{"removed": args[1]}, func(w io.Writer) {
				fmt.Fprintf(w, "Removed grade %s\n", args[1])
			})
		},
	}
}

func newGradeListCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list <student-id>",
		Short:         "List a student's grades in the order they were recorded",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			grades, ok := s.store.Grades(args[0])
			if !ok {
				return s.notFound(model.KindStudent, args[0])
			}
			if subjectID, _ := cmd.Flags().GetString("subject"); subjectID != "" {
				filtered := []model.Grade{}
				for _, g := range grades {
					if g.SubjectID == subjectID {
						filtered = append(filtered, g)
					}
				}
				grades = filtered
			}
			return s.out.Render(grades, func(w io.Writer) {
				tw := table(w)
				fmt.Fprintln(tw, "ID\tSUBJECT\tTYPE\tSCORE\tDATE")
				for _, g := range grades {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", g.ID, g.SubjectID, g.AssessmentType, model.FormatScore(g.Score), g.Date)
				}
				tw.Flush()
			})
		},
	}
	cmd.Flags().String("subject", "", "only grades in this subject")
	return cmd
}

// NewAttendanceCommand creates the attendance command group.
func NewAttendanceCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Record student attendance",
	}
	cmd.AddCommand(newAttendanceAddCommand(opts))
	cmd.AddCommand(newAttendanceRemoveCommand(opts))
	cmd.AddCommand(newAttendanceListCommand(opts))
	return cmd
}

func newAttendanceAddCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <student-id>",
		Short: "Record presence or absence at one class meeting",
		Example: `  gradebook attendance add stud-1 --subject subj-1 --date 2024-03-04
  gradebook attendance add stud-1 --subject subj-1 --date 2024-03-05 --absent`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var a model.Attendance
			a.SubjectID, _ = cmd.Flags().GetString("subject")
			a.Date, _ = cmd.Flags().GetString("date")
			absent, _ := cmd.Flags().GetBool("absent")
			a.Present = !absent

			added, err := s.store.AddAttendance(s.ctx, args[0], a)
			if err != nil {
				return s.fail("add attendance", err)
			}
			return s.out.Render(added, func(w io.Writer) {
				fmt.Fprintf(w, "Recorded %s on %s for %s\n", presence(added.Present), added.Date, added.SubjectID)
			})
		},
	}
	cmd.Flags().String("subject", "", "subject id")
	cmd.Flags().String("date", "", "meeting date (YYYY-MM-DD)")
	cmd.Flags().Bool("absent", false, "record an absence instead of presence")
	return cmd
}

func presence(present bool) string {
	if present {
		return "present"
	}
	return "absent"
}

func newAttendanceRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <student-id> <attendance-id>",
		Short:         "Delete an attendance entry",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.RemoveAttendance(s.ctx, args[0], args[1]); err != nil {
				return s.fail("remove attendance", err)
			}
			return s.out.Render(map[string]string{"removed": args[1]}, func(w io.Writer) {
				fmt.Fprintf(w, "Removed attendance %s\n", args[1])
			})
		},
	}
}

func newAttendanceListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <student-id>",
		Short:         "List a student's attendance entries",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			entries, ok := s.store.AttendanceFor(args[0])
			if !ok {
				return s.notFound(model.KindStudent, args[0])
			}
			return s.out.Render(entries, func(w io.Writer) {
				tw := table(w)
				fmt.Fprintln(tw, "ID\tSUBJECT\tDATE\tPRESENT")
				for _, a := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", a.ID, a.SubjectID, a.Date, a.Present)
				}
				tw.Flush()
			})
		},
	}
}
