package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/gradebook/internal/model"
	"github.com/roach88/gradebook/internal/store"
)

// NewSubjectCommand creates the subject command group.
func NewSubjectCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subject",
		Short: "Manage subjects",
	}
	cmd.AddCommand(newSubjectAddCommand(opts))
	cmd.AddCommand(newSubjectGetCommand(opts))
	cmd.AddCommand(newSubjectListCommand(opts))
	cmd.AddCommand(newSubjectUpdateCommand(opts))
	cmd.AddCommand(newSubjectRemoveCommand(opts))
	return cmd
}

func addSubjectFlags(cmd *cobra.Command) {
	cmd.Flags().String("code", "", "unique subject code, e.g. MAT001")
	cmd.Flags().String("name", "", "subject name")
	cmd.Flags().Int("credit-hours", 0, "credit hours (positive)")
	cmd.Flags().String("description", "", "free-form description")
}

func newSubjectAddCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "add",
		Short:         "Add a subject",
		Example:       `  gradebook subject add --code MAT001 --name Matemática --credit-hours 60`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var sub model.Subject
			sub.ID, _ = cmd.Flags().GetString("id")
			sub.Code, _ = cmd.Flags().GetString("code")
			sub.Name, _ = cmd.Flags().GetString("name")
			sub.CreditHours, _ = cmd.Flags().GetInt("credit-hours")
			sub.Description, _ = cmd.Flags().GetString("description")

			added, err := s.store.AddSubject(s.ctx, sub)
			if err != nil {
				return s.fail("add subject", err)
			}
			return s.out.Render(added, func(w io.Writer) {
				fmt.Fprintf(w, "Added subject %s (%s)\n", added.ID, added.Code)
			})
		},
	}
	addSubjectFlags(cmd)
	cmd.Flags().String("id", "", "explicit id (generated when empty)")
	return cmd
}

func newSubjectGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Show a subject by id or code",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			sub, ok := s.store.GetSubject(args[0])
			if !ok {
				sub, ok = s.store.FindSubjectByCode(args[0])
			}
			if !ok {
				return s.notFound(model.KindSubject, args[0])
			}
			return s.out.Render(sub, func(w io.Writer) {
				fmt.Fprintf(w, "ID:            %s\n", sub.ID)
				fmt.Fprintf(w, "Code:          %s\n", sub.Code)
				fmt.Fprintf(w, "Name:          %s\n", sub.Name)
				fmt.Fprintf(w, "Credit hours:  %d\n", sub.CreditHours)
				fmt.Fprintf(w, "Description:   %s\n", orDash(sub.Description))
			})
		},
	}
}

func newSubjectListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List subjects",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			subjects := s.store.ListSubjects()
			return s.out.Render(subjects, func(w io.Writer) {
				tw := table(w)
				fmt.Fprintln(tw, "ID\tCODE\tNAME\tHOURS")
				for _, sub := range subjects {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", sub.ID, sub.Code, sub.Name, sub.CreditHours)
				}
				tw.Flush()
			})
		},
	}
}

func newSubjectUpdateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "update <id>",
		Short:         "Change a subject's fields",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			updated, err := s.store.UpdateSubject(s.ctx, args[0], store.SubjectPatch{
				Code:        changedString(cmd, "code"),
				Name:        changedString(cmd, "name"),
				CreditHours: changedInt(cmd, "credit-hours"),
				Description: changedString(cmd, "description"),
			})
			if err != nil {
				return s.fail("update subject", err)
			}
			return s.out.Render(updated, func(w io.Writer) {
				fmt.Fprintf(w, "Updated subject %s\n", updated.ID)
			})
		},
	}
	addSubjectFlags(cmd)
	return cmd
}

func newSubjectRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <id>",
		Short:         "Remove a subject; references to it become orphans",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.RemoveSubject(s.ctx, args[0]); err != nil {
				return s.fail("remove subject", err)
			}
			return s.out.Render(map[string]string{"removed": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Removed subject %s\n", args[0])
			})
		},
	}
}
