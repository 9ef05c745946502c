package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/gradebook/internal/config"
	"github.com/roach88/gradebook/internal/model"
	"github.com/roach88/gradebook/internal/nationalid"
	"github.com/roach88/gradebook/internal/persist"
	"github.com/roach88/gradebook/internal/store"
)

// session is an opened store plus the output and logging a command needs.
type session struct {
	ctx    context.Context
	store  *store.Store
	out    *OutputFormatter
	logger *slog.Logger
	cfg    config.Config
	clock  model.Clock
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// openSession resolves configuration, opens the backend and loads the
// dataset. Callers must defer Close.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	out := newFormatter(opts, cmd)

	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}

	level := cfg.LogLevel
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pOpts := cfg.PersistOptions()
	logger.Debug("opening backend", "backend", cfg.Backend, "path", pOpts.Path)
	backend, err := persist.Open(ctx, cfg.Backend, pOpts)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeOpenStore, "failed to open backend", err)
	}

	storeOpts := []store.Option{
		store.WithLogger(logger),
		store.WithNationalIDValidator(validNationalID),
	}
	var clock model.Clock = model.SystemClock{}
	if opts.Clock != nil {
		clock = opts.Clock
	}
	storeOpts = append(storeOpts, store.WithClock(clock))
	if opts.IDs != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDs))
	}
	st, err := store.New(ctx, backend, storeOpts...)
	if err != nil {
		_ = backend.Close()
		return nil, out.Fail(ExitCommandError, ErrCodeOpenStore, "failed to load dataset", err)
	}

	return &session{ctx: ctx, store: st, out: out, logger: logger, cfg: cfg, clock: clock}, nil
}

func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Backend != "" {
		cfg.Backend = persist.Kind(opts.Backend)
	}
	if opts.DB != "" {
		cfg.DBPath = opts.DB
	}
	return cfg, cfg.Validate()
}

// validNationalID accepts an empty national id; a filled one must be a
// valid CPF.
func validNationalID(s string) bool {
	return s == "" || nationalid.Valid(s)
}

// Close releases the backend.
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing backend", "error", err)
	}
}

// fail reports err and maps record error codes to CLI codes and exit codes.
func (s *session) fail(message string, err error) error {
	var recErr *model.Error
	if !errors.As(err, &recErr) {
		return s.out.Fail(ExitCommandError, ErrCodeGeneric, message, err)
	}
	switch recErr.Code {
	case model.ErrCodeValidation:
		return s.out.Fail(ExitFailure, ErrCodeValidation, message, err)
	case model.ErrCodeNotFound:
		return s.out.Fail(ExitFailure, ErrCodeNotFound, message, err)
	case model.ErrCodeMalformedBackup:
		return s.out.Fail(ExitFailure, ErrCodeMalformedBackup, message, err)
	case model.ErrCodePersistence:
		return s.out.Fail(ExitCommandError, ErrCodePersistence, message, err)
	default:
		return s.out.Fail(ExitCommandError, ErrCodeGeneric, message, err)
	}
}

// notFound reports an unknown id from a getter.
func (s *session) notFound(kind, id string) error {
	return s.fail("lookup failed", model.NewNotFoundError("get "+kind, kind, id))
}
