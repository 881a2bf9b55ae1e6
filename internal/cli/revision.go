package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/revline/internal/graph"
	"github.com/roach88/revline/internal/loader"
)

// RevisionOptions holds flags for the revision command.
type RevisionOptions struct {
	*RootOptions
	Message   string
	Head      string
	RevID     string
	Upgrade   []string
	Downgrade []string
}

// RevisionResult is the JSON payload of the revision command.
type RevisionResult struct {
	Revision     string `json:"revision"`
	DownRevision string `json:"down_revision"`
	Message      string `json:"message"`
	Path         string `json:"path"`
}

// NewRevisionCommand creates the revision command.
func NewRevisionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RevisionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "revision",
		Short: "Create a new revision file",
		Long: `Write a new revision file into the scripts directory. Its parent is the
current head unless --head names another revision (use --head base for a
new root).

Example:
  revline revision -m "add users table"
  revline revision -m "index emails" --up "CREATE INDEX ix_email ON users(email)" --down "DROP INDEX ix_email"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRevision(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "revision message (required)")
	cmd.Flags().StringVar(&opts.Head, "head", graph.SymbolHead, "parent revision")
	cmd.Flags().StringVar(&opts.RevID, "rev-id", "", "use this identifier instead of a generated one")
	cmd.Flags().StringArrayVar(&opts.Upgrade, "up", nil, "upgrade statement (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Downgrade, "down", nil, "downgrade statement (repeatable)")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func runRevision(opts *RevisionOptions, cmd *cobra.Command) error {
	p, err := openProject(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p.cfg.ScriptLocation, 0o755); err != nil {
		return fail(p.out, ErrCodeWriteFailed, err)
	}

	g, err := loader.LoadGraph(p.cfg.ScriptLocation, p.logger)
	if err != nil {
		return fail(p.out, "", err)
	}

	parent, err := g.Resolve(opts.Head)
	if err != nil {
		return fail(p.out, "", err)
	}
	if opts.RevID != "" {
		if err := graph.ValidateID(opts.RevID); err != nil {
			return fail(p.out, ErrCodeLoad, err)
		}
		if _, exists := g.Get(opts.RevID); exists {
			return failf(p.out, ErrCodeLoad, "revision %s already exists", opts.RevID)
		}
	}

	path, rev, err := loader.Generate(p.cfg.ScriptLocation, opts.Message, loader.GenerateOptions{
		ID:        opts.RevID,
		Parent:    parent,
		Upgrade:   opts.Upgrade,
		Downgrade: opts.Downgrade,
	})
	if err != nil {
		return fail(p.out, ErrCodeWriteFailed, err)
	}
	p.logger.Info("generated revision", "revision", rev.ID, "down_revision", displayID(parent), "path", path)

	return p.out.Success(RevisionResult{
		Revision:     rev.ID,
		DownRevision: rev.DownRevision,
		Message:      rev.Message,
		Path:         path,
	}, fmt.Sprintf("Generating %s ... done", path))
}
