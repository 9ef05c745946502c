package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/gradebook/internal/report"
	"github.com/roach88/gradebook/internal/seed"
)

// StatusResult is the output of the status command.
type StatusResult struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
	report.Overview
}

// NewStatusCommand creates the status command.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "status",
		Short:         "Summarize the dataset and its storage",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ov, err := report.NewOverview(s.store.Snapshot())
			if err != nil {
				return s.fail("build overview", err)
			}
			res := StatusResult{
				Backend:  string(s.cfg.Backend),
				Path:     s.cfg.PersistOptions().Path,
				Overview: ov,
			}

			return s.out.Render(res, func(w io.Writer) {
				fmt.Fprintf(w, "Backend:        %s %s\n", res.Backend, res.Path)
				fmt.Fprintf(w, "Last modified:  %s\n", orDash(ov.LastModified))
				fmt.Fprintf(w, "Size:           %d bytes\n", ov.SizeBytes)
				fmt.Fprintf(w, "Subjects:       %d\n", ov.Subjects)
				fmt.Fprintf(w, "Teachers:       %d\n", ov.Teachers)
				fmt.Fprintf(w, "Sections:       %d\n", ov.ClassSections)
				fmt.Fprintf(w, "Students:       %d\n", ov.Students)
				fmt.Fprintf(w, "Attendance:     %d\n", ov.AttendanceRecords)
				if ov.Integrity.Valid {
					fmt.Fprintln(w, "Integrity:      ok")
				} else {
					fmt.Fprintf(w, "Integrity:      %d problem(s)\n", len(ov.Integrity.Problems))
				}
				if len(ov.StudentsPerSection) > 0 {
					fmt.Fprintln(w)
					tw := table(w)
					fmt.Fprintln(tw, "SECTION\tSTUDENTS")
					for _, c := range ov.StudentsPerSection {
						fmt.Fprintf(tw, "%s\t%d\n", c.Name, c.Students)
					}
					tw.Flush()
				}
			})
		},
	}
}

// NewClearCommand creates the clear command.
func NewClearCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "clear",
		Short:         "Delete every record",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return newFormatter(opts, cmd).Fail(ExitCommandError, ErrCodeUsage,
					"refusing to clear without --yes", nil)
			}

			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.Clear(s.ctx); err != nil {
				return s.fail("clear dataset", err)
			}
			return s.out.Render(map[string]bool{"cleared": true}, func(w io.Writer) {
				fmt.Fprintln(w, "Dataset cleared")
			})
		},
	}
	cmd.Flags().Bool("yes", false, "confirm deleting all data")
	return cmd
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load a YAML dataset into an empty store",
		Long: `Load subjects, teachers, students and class sections from a YAML file.
Grades and attendance refer to subjects by code; sections refer to their
teacher and students by registration.

Seeding refuses to run on a store that already has data unless --force is
given, in which case the store is cleared first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ds, err := seed.Load(args[0])
			if err != nil {
				return s.out.Fail(ExitCommandError, ErrCodeReadFile, "load seed file", err)
			}
			force, _ := cmd.Flags().GetBool("force")

			res, err := seed.Apply(s.ctx, s.store, ds, force)
			if errors.Is(err, seed.ErrStoreHasData) {
				return s.out.Fail(ExitFailure, ErrCodeHasData, "seed refused", err)
			}
			if err != nil {
				return s.fail("seed dataset", err)
			}
			return s.out.Render(res, func(w io.Writer) {
				fmt.Fprintf(w, "Seeded %d subject(s), %d teacher(s), %d student(s), %d section(s), %d enrollment(s)\n",
					res.Subjects, res.Teachers, res.Students, res.Sections, res.Enrollments)
			})
		},
	}
	cmd.Flags().Bool("force", false, "clear existing data before seeding")
	return cmd
}
