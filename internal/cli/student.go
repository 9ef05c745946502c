package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/gradebook/internal/model"
	"github.com/roach88/gradebook/internal/report"
	"github.com/roach88/gradebook/internal/store"
)

// NewStudentCommand creates the student command group.
func NewStudentCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Manage students",
	}
	cmd.AddCommand(newStudentAddCommand(opts))
	cmd.AddCommand(newStudentGetCommand(opts))
	cmd.AddCommand(newStudentListCommand(opts))
	cmd.AddCommand(newStudentUpdateCommand(opts))
	cmd.AddCommand(newStudentRemoveCommand(opts))
	cmd.AddCommand(newStudentImportCommand(opts))
	return cmd
}

func addPersonFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "full name")
	cmd.Flags().String("registration", "", "registration number (unique per kind)")
	cmd.Flags().String("national-id", "", "CPF, with or without punctuation")
	cmd.Flags().String("contact", "", "email or phone")
}

func addStudentFlags(cmd *cobra.Command) {
	addPersonFlags(cmd)
	cmd.Flags().String("birth-date", "", "birth date (YYYY-MM-DD)")
	cmd.Flags().String("section", "", "class section id")
}

func personPatch(cmd *cobra.Command) store.PersonPatch {
	return store.PersonPatch{
		Name:         changedString(cmd, "name"),
		Registration: changedString(cmd, "registration"),
		NationalID:   changedString(cmd, "national-id"),
		Contact:      changedString(cmd, "contact"),
	}
}

func newStudentAddCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		Example: `  gradebook student add --name "Bruno Lima" --registration A001 --birth-date 2008-05-14
  gradebook student add --name "Carla Dias" --registration A002 --national-id 529.982.247-25`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var st model.Student
			p := personPatch(cmd)
			st.ID, _ = cmd.Flags().GetString("id")
			setIf(&st.Name, p.Name)
			setIf(&st.Registration, p.Registration)
			setIf(&st.NationalID, p.NationalID)
			setIf(&st.Contact, p.Contact)
			st.BirthDate, _ = cmd.Flags().GetString("birth-date")
			st.ClassSectionID, _ = cmd.Flags().GetString("section")

			added, err := s.store.AddStudent(s.ctx, st)
			if err != nil {
				return s.fail("add student", err)
			}
			return s.out.Render(added, func(w io.Writer) {
				fmt.Fprintf(w, "Added student %s (%s)\n", added.ID, added.Name)
			})
		},
	}
	addStudentFlags(cmd)
	cmd.Flags().String("id", "", "explicit id (generated when empty)")
	return cmd
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func newStudentGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Show a student with grades and attendance",
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
			return s.out.Render(st, func(w io.Writer) { printStudent(w, st) })
		},
	}
}

func printStudent(w io.Writer, st model.Student) {
	fmt.Fprintf(w, "ID:            %s\n", st.ID)
	fmt.Fprintf(w, "Name:          %s\n", st.Name)
	fmt.Fprintf(w, "Registration:  %s\n", st.Registration)
	fmt.Fprintf(w, "National ID:   %s\n", orDash(st.NationalID))
	fmt.Fprintf(w, "Contact:       %s\n", orDash(st.Contact))
	fmt.Fprintf(w, "Birth date:    %s\n", orDash(st.BirthDate))
	fmt.Fprintf(w, "Section:       %s\n", orDash(st.ClassSectionID))
	fmt.Fprintf(w, "Grades:        %d (overall average %s)\n", len(st.Grades), model.FormatScore(model.OverallAverage(st)))
	fmt.Fprintf(w, "Attendance:    %d (overall %s%%)\n", len(st.Attendance), model.FormatScore(model.OverallAttendancePercent(st)))
}

func newStudentListCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List students sorted by name",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			students := s.store.ListStudents()
			if section, _ := cmd.Flags().GetString("section"); section != "" {
				filtered := []model.Student{}
				for _, st := range students {
					if st.ClassSectionID == section {
						filtered = append(filtered, st)
					}
				}
				students = filtered
			}
			report.SortStudents(students)

			return s.out.Render(students, func(w io.Writer) {
				tw := table(w)
				fmt.Fprintln(tw, "ID\tREGISTRATION\tNAME\tSECTION")
				for _, st := range students {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", st.ID, st.Registration, st.Name, orDash(st.ClassSectionID))
				}
				tw.Flush()
			})
		},
	}
	cmd.Flags().String("section", "", "only students in this class section")
	return cmd
}

func newStudentUpdateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "update <id>",
		Short:         "Change a student's fields; only the flags given are applied",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			updated, err := s.store.UpdateStudent(s.ctx, args[0], store.StudentPatch{
				PersonPatch:    personPatch(cmd),
				BirthDate:      changedString(cmd, "birth-date"),
				ClassSectionID: changedString(cmd, "section"),
			})
			if err != nil {
				return s.fail("update student", err)
			}
			return s.out.Render(updated, func(w io.Writer) {
				fmt.Fprintf(w, "Updated student %s\n", updated.ID)
			})
		},
	}
	addStudentFlags(cmd)
	return cmd
}

func newStudentRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <id>",
		Short:         "Remove a student and their grades and attendance",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.RemoveStudent(s.ctx, args[0]); err != nil {
				return s.fail("remove student", err)
			}
			return s.out.Render(map[string]string{"removed": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Removed student %s\n", args[0])
			})
		},
	}
}

// ImportResult summarizes a roster import.
type ImportResult struct {
	Imported []string     `json:"imported"`
	Skipped  []SkippedRow `json:"skipped"`
}

// SkippedRow is a roster line that was rejected.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func newStudentImportCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <roster.xlsx>",
		Short: "Add students from the first sheet of an XLSX roster",
		Long: `Add students from an XLSX roster. The first row is a header; the columns
are name, registration, national id, birth date (YYYY-MM-DD) and contact.

Rows that fail validation are reported and skipped; the rest are added.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			in, err := openInput(opts, cmd, args[0])
			if err != nil {
				return s.out.Fail(ExitCommandError, ErrCodeReadFile, "read roster", err)
			}
			defer in.Close()

			rows, err := report.ReadRoster(in)
			if err != nil {
				return s.out.Fail(ExitCommandError, ErrCodeReadFile, "read roster", err)
			}
			section, _ := cmd.Flags().GetString("section")

			res := ImportResult{Imported: []string{}, Skipped: []SkippedRow{}}
			for _, row := range rows {
				st := row.Student()
				st.ClassSectionID = section
				added, err := s.store.AddStudent(s.ctx, st)
				if model.IsValidation(err) {
					s.out.VerboseLog("skipping line %d: %v", row.Line, err)
					res.Skipped = append(res.Skipped, SkippedRow{Line: row.Line, Reason: err.Error()})
					continue
				}
				if err != nil {
					return s.fail("import roster", err)
				}
				res.Imported = append(res.Imported, added.ID)
			}

			return s.out.Render(res, func(w io.Writer) {
				fmt.Fprintf(w, "Imported %d student(s), skipped %d\n", len(res.Imported), len(res.Skipped))
				for _, sk := range res.Skipped {
					fmt.Fprintf(w, "  line %d: %s\n", sk.Line, sk.Reason)
				}
			})
		},
	}
	cmd.Flags().String("section", "", "enroll imported students in this class section")
	return cmd
}
