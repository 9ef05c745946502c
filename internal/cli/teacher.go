package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gradebook/internal/model"
	"github.com/roach88/gradebook/internal/store"
)

// NewTeacherCommand creates the teacher command group.
func NewTeacherCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teacher",
		Short: "Manage teachers and their subject assignments",
	}
	cmd.AddCommand(newTeacherAddCommand(opts))
	cmd.AddCommand(newTeacherGetCommand(opts))
	cmd.AddCommand(newTeacherListCommand(opts))
	cmd.AddCommand(newTeacherUpdateCommand(opts))
	cmd.AddCommand(newTeacherRemoveCommand(opts))
	cmd.AddCommand(newTeacherAssignCommand(opts, true))
	cmd.AddCommand(newTeacherAssignCommand(opts, false))
	return cmd
}

func addTeacherFlags(cmd *cobra.Command) {
	addPersonFlags(cmd)
	cmd.Flags().String("specialization", "", "area of specialization")
	cmd.Flags().StringSlice("subjects", nil, "subject ids taught (comma separated)")
}

func newTeacherAddCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "add",
		Short:         "Add a teacher",
		Example:       `  gradebook teacher add --name "Ana Souza" --registration P001 --subjects subj-1,subj-2`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var t model.Teacher
			p := personPatch(cmd)
			t.ID, _ = cmd.Flags().GetString("id")
			setIf(&t.Name, p.Name)
			setIf(&t.Registration, p.Registration)
			setIf(&t.NationalID, p.NationalID)
			setIf(&t.Contact, p.Contact)
			t.Specialization, _ = cmd.Flags().GetString("specialization")
			t.SubjectIDs, _ = cmd.Flags().GetStringSlice("subjects")

			added, err := s.store.AddTeacher(s.ctx, t)
			if err != nil {
				return s.fail("add teacher", err)
			}
			return s.out.Render(added, func(w io.Writer) {
				fmt.Fprintf(w, "Added teacher %s (%s)\n", added.ID, added.Name)
			})
		},
	}
	addTeacherFlags(cmd)
	cmd.Flags().String("id", "", "explicit id (generated when empty)")
	return cmd
}

func newTeacherGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Show a teacher",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			t, ok := s.store.GetTeacher(args[0])
			if !ok {
				return s.notFound(model.KindTeacher, args[0])
			}
			return s.out.Render(t, func(w io.Writer) {
				fmt.Fprintf(w, "ID:              %s\n", t.ID)
				fmt.Fprintf(w, "Name:            %s\n", t.Name)
				fmt.Fprintf(w, "Registration:    %s\n", t.Registration)
				fmt.Fprintf(w, "National ID:     %s\n", orDash(t.NationalID))
				fmt.Fprintf(w, "Contact:         %s\n", orDash(t.Contact))
				fmt.Fprintf(w, "Specialization:  %s\n", orDash(t.Specialization))
				fmt.Fprintf(w, "Subjects:        %s\n", orDash(strings.Join(t.SubjectIDs, ", ")))
			})
		},
	}
}

func newTeacherListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List teachers",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			teachers := s.store.ListTeachers()
			return s.out.Render(teachers, func(w io.Writer) {
				tw := table(w)
				fmt.Fprintln(tw, "ID\tREGISTRATION\tNAME\tSUBJECTS")
				for _, t := range teachers {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", t.ID, t.Registration, t.Name, len(t.SubjectIDs))
				}
				tw.Flush()
			})
		},
	}
}

func newTeacherUpdateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "update <id>",
		Short:         "Change a teacher's fields; --subjects replaces the whole set",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			updated, err := s.store.UpdateTeacher(s.ctx, args[0], store.TeacherPatch{
				PersonPatch:    personPatch(cmd),
				Specialization: changedString(cmd, "specialization"),
				SubjectIDs:     changedStrings(cmd, "subjects"),
			})
			if err != nil {
				return s.fail("update teacher", err)
			}
			return s.out.Render(updated, func(w io.Writer) {
				fmt.Fprintf(w, "Updated teacher %s\n", updated.ID)
			})
		},
	}
	addTeacherFlags(cmd)
	return cmd
}

func newTeacherRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <id>",
		Short:         "Remove a teacher; sections taught become orphans",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.RemoveTeacher(s.ctx, args[0]); err != nil {
				return s.fail("remove teacher", err)
			}
			return s.out.Render(map[string]string{"removed": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Removed teacher %s\n", args[0])
			})
		},
	}
}

// newTeacherAssignCommand builds "assign" or, when assign is false, "unassign".
func newTeacherAssignCommand(opts *RootOptions, assign bool) *cobra.Command {
	use, short, op := "assign", "Add a subject to a teacher's set", "assign subject"
	if !assign {
		use, short, op = "unassign", "Remove a subject from a teacher's set", "unassign subject"
	}
	return &cobra.Command{
		Use:           use + " <teacher-id> <subject-id>",
		Short:         short,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			teacherID, subjectID := args[0], args[1]
			if assign {
				err = s.store.AssignSubject(s.ctx, teacherID, subjectID)
			} else {
				err = s.store.UnassignSubject(s.ctx, teacherID, subjectID)
			}
			if err != nil {
				return s.fail(op, err)
			}
			t, _ := s.store.GetTeacher(teacherID)
			return s.out.Render(t, func(w io.Writer) {
				fmt.Fprintf(w, "Teacher %s subjects: %s\n", t.ID, orDash(strings.Join(t.SubjectIDs, ", ")))
			})
		},
	}
}
