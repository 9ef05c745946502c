package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/gradebook/internal/model"
	"github.com/roach88/gradebook/internal/report"
	"github.com/roach88/gradebook/internal/store"
)

// NewSectionCommand creates the class section command group.
func NewSectionCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "section",
		Aliases: []string{"class"},
		Short:   "Manage class sections, rosters and section reports",
	}
	cmd.AddCommand(newSectionAddCommand(opts))
	cmd.AddCommand(newSectionGetCommand(opts))
	cmd.AddCommand(newSectionListCommand(opts))
	cmd.AddCommand(newSectionUpdateCommand(opts))
	cmd.AddCommand(newSectionRemoveCommand(opts))
	cmd.AddCommand(newSectionEnrollCommand(opts, true))
	cmd.AddCommand(newSectionEnrollCommand(opts, false))
	cmd.AddCommand(newSectionReportCommand(opts))
	return cmd
}

func addSectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "section name, e.g. 1A")
	cmd.Flags().String("subject", "", "subject id")
	cmd.Flags().String("teacher", "", "teacher id")
	cmd.Flags().String("shift", "", "morning, afternoon or evening")
	cmd.Flags().Int("year", 0, "school year")
	cmd.Flags().Int("term", 0, "term within the year")
}

func newSectionAddCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "add",
		Short:         "Add a class section",
		Example:       `  gradebook section add --name 1A --subject subj-1 --teacher teach-1 --shift morning --year 2024 --term 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var c model.ClassSection
			c.ID, _ = cmd.Flags().GetString("id")
			c.Name, _ = cmd.Flags().GetString("name")
			c.SubjectID, _ = cmd.Flags().GetString("subject")
			c.TeacherID, _ = cmd.Flags().GetString("teacher")
			shift, _ := cmd.Flags().GetString("shift")
			c.Shift = model.Shift(shift)
			c.Year, _ = cmd.Flags().GetInt("year")
			c.Term, _ = cmd.Flags().GetInt("term")

			added, err := s.store.AddClassSection(s.ctx, c)
			if err != nil {
				return s.fail("add class section", err)
			}
			return s.out.Render(added, func(w io.Writer) {
				fmt.Fprintf(w, "Added class section %s (%s)\n", added.ID, added.Name)
			})
		},
	}
	addSectionFlags(cmd)
	cmd.Flags().String("id", "", "explicit id (generated when empty)")
	return cmd
}

func newSectionGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Show a class section and its roster",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			c, ok := s.store.GetClassSection(args[0])
			if !ok {
				return s.notFound(model.KindClassSection, args[0])
			}
			return s.out.Render(c, func(w io.Writer) {
				fmt.Fprintf(w, "ID:        %s\n", c.ID)
				fmt.Fprintf(w, "Name:      %s\n", c.Name)
				fmt.Fprintf(w, "Subject:   %s\n", c.SubjectID)
				fmt.Fprintf(w, "Teacher:   %s\n", c.TeacherID)
				fmt.Fprintf(w, "Shift:     %s\n", c.Shift)
				fmt.Fprintf(w, "Period:    %d/%d\n", c.Year, c.Term)
				fmt.Fprintf(w, "Students:  %d\n", len(c.StudentIDs))
				for _, id := range c.StudentIDs {
					fmt.Fprintf(w, "  - %s\n", id)
				}
			})
		},
	}
}

func newSectionListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List class sections",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			sections := s.store.ListClassSections()
			return s.out.Render(sections, func(w io.Writer) {
				tw := table(w)
				fmt.Fprintln(tw, "ID\tNAME\tSUBJECT\tTEACHER\tSHIFT\tSTUDENTS")
				for _, c := range sections {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", c.ID, c.Name, c.SubjectID, c.TeacherID, c.Shift, len(c.StudentIDs))
				}
				tw.Flush()
			})
		},
	}
}

func newSectionUpdateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "update <id>",
		Short:         "Change a class section's fields",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			patch := store.ClassSectionPatch{
				Name:      changedString(cmd, "name"),
				SubjectID: changedString(cmd, "subject"),
				TeacherID: changedString(cmd, "teacher"),
				Year:      changedInt(cmd, "year"),
				Term:      changedInt(cmd, "term"),
			}
			if v := changedString(cmd, "shift"); v != nil {
				shift := model.Shift(*v)
				patch.Shift = &shift
			}
			updated, err := s.store.UpdateClassSection(s.ctx, args[0], patch)
			if err != nil {
				return s.fail("update class section", err)
			}
			return s.out.Render(updated, func(w io.Writer) {
				fmt.Fprintf(w, "Updated class section %s\n", updated.ID)
			})
		},
	}
	addSectionFlags(cmd)
	return cmd
}

func newSectionRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <id>",
		Short:         "Remove a class section; its students become orphans",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.RemoveClassSection(s.ctx, args[0]); err != nil {
				return s.fail("remove class section", err)
			}
			return s.out.Render(map[string]string{"removed": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Removed class section %s\n", args[0])
			})
		},
	}
}

// newSectionEnrollCommand builds "enroll" or, when enroll is false, "unenroll".
func newSectionEnrollCommand(opts *RootOptions, enroll bool) *cobra.Command {
	use, short, op := "enroll", "Put students on a section roster, moving them off any other", "enroll student"
	if !enroll {
		use, short, op = "unenroll", "Take students off a section roster", "unenroll student"
	}
	return &cobra.Command{
		Use:           use + " <section-id> <student-id>...",
		Short:         short,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			sectionID := args[0]
			for _, studentID := range args[1:] {
				if enroll {
					err = s.store.Enroll(s.ctx, sectionID, studentID)
				} else {
					err = s.store.Unenroll(s.ctx, sectionID, studentID)
				}
				if err != nil {
					return s.fail(op, err)
				}
				s.logger.Debug(op, "section", sectionID, "student", studentID)
			}
			c, _ := s.store.GetClassSection(sectionID)
			return s.out.Render(c, func(w io.Writer) {
				fmt.Fprintf(w, "Section %s now has %d student(s)\n", c.ID, len(c.StudentIDs))
			})
		},
	}
}

func newSectionReportCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <section-id>",
		Short: "Class averages and pass rates for a section",
		Long: `Compute the section rollup for one subject: class average, highest and
lowest score, and how many students pass (average >= 7 and attendance >= 75%).

Only enrolled students with at least one grade in the subject are counted.
With --output the per-student table and the rollup are also written to an
XLSX workbook.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			section, ok := s.store.GetClassSection(args[0])
			if !ok {
				return s.notFound(model.KindClassSection, args[0])
			}
			subjectID, _ := cmd.Flags().GetString("subject")
			if subjectID == "" {
				subjectID = section.SubjectID
			}
			subject, ok := s.store.GetSubject(subjectID)
			if !ok {
				return s.notFound(model.KindSubject, subjectID)
			}
			students, _ := s.store.SectionStudents(section.ID)
			rollup := model.SectionRollup(section, students, subject.ID)

			if path, _ := cmd.Flags().GetString("output"); path != "" {
				if err := writeWorkbook(path, section, subject, students); err != nil {
					return s.out.Fail(ExitCommandError, ErrCodeWriteFile, "write workbook", err)
				}
				s.out.VerboseLog("wrote %s", path)
			}

			return s.out.Render(rollup, func(w io.Writer) {
				fmt.Fprintf(w, "Section %s, subject %s %s\n", section.Name, subject.Code, subject.Name)
				fmt.Fprintf(w, "  Enrolled:       %d\n", rollup.TotalStudents)
				fmt.Fprintf(w, "  With grades:    %d\n", rollup.StudentsWithGrade)
				fmt.Fprintf(w, "  Class average:  %s\n", model.FormatScore(rollup.ClassAverage))
				fmt.Fprintf(w, "  Highest:        %s\n", model.FormatScore(rollup.HighestScore))
				fmt.Fprintf(w, "  Lowest:         %s\n", model.FormatScore(rollup.LowestScore))
				fmt.Fprintf(w, "  Passed:         %d\n", rollup.Passed)
				fmt.Fprintf(w, "  Failed:         %d\n", rollup.Failed)
				fmt.Fprintf(w, "  Pass rate:      %s%%\n", model.FormatScore(rollup.PassPercent))
			})
		},
	}
	cmd.Flags().String("subject", "", "subject id (defaults to the section's subject)")
	cmd.Flags().StringP("output", "o", "", "also write an XLSX workbook to this path")
	return cmd
}

func writeWorkbook(path string, section model.ClassSection, subject model.Subject, students []model.Student) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteSectionWorkbook(f, section, subject, students); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
