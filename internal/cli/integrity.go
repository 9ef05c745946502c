package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewIntegrityCommand creates the integrity command group.
func NewIntegrityCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrity",
		Short: "Find and prune dangling references",
	}
	cmd.AddCommand(newIntegrityCheckCommand(opts))
	cmd.AddCommand(newIntegrityPruneCommand(opts))
	return cmd
}

func newIntegrityCheckCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report sections and students that reference missing records",
		Long: `Scan the dataset for class sections whose subject or teacher is missing
and students whose class section is missing. Nothing is modified.

Exits with code 1 when problems are found.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rep := s.store.CheckIntegrity()
			if rep.Valid {
				return s.out.Render(rep, func(w io.Writer) {
					fmt.Fprintln(w, "✓ No dangling references")
				})
			}

			msg := fmt.Sprintf("%d dangling reference(s)", len(rep.Problems))
			if s.out.Format == "json" {
				_ = s.out.Error(ErrCodeIntegrity, msg, rep)
			} else {
				for _, m := range rep.Messages() {
					fmt.Fprintf(s.out.Writer, "✗ %s\n", m)
				}
				_ = s.out.Error(ErrCodeIntegrity, msg, nil)
			}
			return WrapExitError(ExitFailure, msg, nil)
		},
	}
}

func newIntegrityPruneCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete students and sections with dangling references",
		Long: `Delete every student whose class section is missing, then every class
section whose subject or teacher is missing. Removal does not cascade: a
student whose section is pruned in this pass stays until the next prune.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			removed, err := s.store.PruneOrphans(s.ctx)
			if err != nil {
				return s.fail("prune orphans", err)
			}
			return s.out.Render(map[string]int{"removed": removed}, func(w io.Writer) {
				fmt.Fprintf(w, "Removed %d orphaned record(s)\n", removed)
			})
		},
	}
}
