package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/revline/internal/config"
	"github.com/roach88/revline/internal/emit"
	"github.com/roach88/revline/internal/graph"
	"github.com/roach88/revline/internal/loader"
	"github.com/roach88/revline/internal/store"
)

// project is what a command works on: resolved configuration, a logger and,
// once loaded, the revision graph.
type project struct {
	cfg    config.Config
	logger *slog.Logger
	out    *OutputFormatter
	graph  *graph.Graph
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// newLogger writes text logs to w. -v lowers the level to Debug.
func newLogger(verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openProject resolves configuration from flags and revline.yaml. It does
// not read revision files yet; call loadGraph for that.
func openProject(opts *RootOptions, cmd *cobra.Command) (*project, error) {
	p := &project{
		out:    newFormatter(opts, cmd),
		logger: newLogger(opts.Verbose, cmd.ErrOrStderr()),
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return p, fail(p.out, ErrCodeConfig, err)
	}
	cfg = cfg.Apply(config.Overrides{
		ScriptLocation: opts.Scripts,
		Database:       opts.Database,
		VersionTable:   opts.VersionTable,
	})
	if err := cfg.Validate(); err != nil {
		return p, fail(p.out, ErrCodeConfig, err)
	}
	p.cfg = cfg
	p.logger.Debug("configuration", "scripts", cfg.ScriptLocation, "database", cfg.Database, "version_table", cfg.VersionTable)
	return p, nil
}

// loadProject is openProject followed by loading the revision graph.
func loadProject(opts *RootOptions, cmd *cobra.Command) (*project, error) {
	p, err := openProject(opts, cmd)
	if err != nil {
		return nil, err
	}
	g, err := loader.LoadGraph(p.cfg.ScriptLocation, p.logger)
	if err != nil {
		return nil, fail(p.out, "", err)
	}
	p.graph = g
	p.out.VerboseLog("Loaded %d revision(s) from %s", g.Len(), p.cfg.ScriptLocation)
	return p, nil
}

// openStore opens the live target, creating the database when needed.
func (p *project) openStore() (*store.Store, error) {
	return p.open(false)
}

// inspectStore opens an existing database for queries only; a missing file
// is an error rather than a new empty database.
func (p *project) inspectStore() (*store.Store, error) {
	return p.open(true)
}

func (p *project) open(readOnly bool) (*store.Store, error) {
	st, err := store.Open(p.cfg.Database, store.Options{
		VersionTable: p.cfg.VersionTable,
		Logger:       p.logger,
		ReadOnly:     readOnly,
	})
	if err != nil {
		return nil, fail(p.out, ErrCodeDatabase, err)
	}
	return st, nil
}

// openScript creates the text target writing to the command's stdout.
func (p *project) openScript(w io.Writer) (*emit.Target, error) {
	t, err := emit.New(w, emit.Options{VersionTable: p.cfg.VersionTable})
	if err != nil {
		return nil, fail(p.out, ErrCodeConfig, err)
	}
	return t, nil
}

// commandContext derives a context that is cancelled on SIGINT/SIGTERM. The
// session checks it between steps, so an interrupt stops after the step in
// flight commits.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func displayID(id string) string {
	if id == "" {
		return "<base>"
	}
	return id
}
