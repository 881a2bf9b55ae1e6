package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/revline/internal/engine"
)

// CurrentResult is the JSON payload of the current command.
type CurrentResult struct {
	Current string `json:"current"`
	IsHead  bool   `json:"is_head"`
	Message string `json:"message,omitempty"`
}

// NewCurrentCommand creates the current command.
func NewCurrentCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "current",
		Short:         "Show the database's current revision",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurrent(rootOpts, cmd)
		},
	}
}

func runCurrent(opts *RootOptions, cmd *cobra.Command) error {
	p, err := loadProject(opts, cmd)
	if err != nil {
		return err
	}
	st, err := p.inspectStore()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	cur, err := engine.CurrentPosition(ctx, st)
	if err != nil {
		return fail(p.out, ErrCodeDatabase, err)
	}

	result := CurrentResult{Current: cur}
	line := displayID(cur)
	if rev, ok := p.graph.Get(cur); ok {
		result.IsHead = p.graph.IsHead(cur)
		result.Message = rev.Message
		if result.IsHead {
			line += " (head)"
		}
		if opts.Verbose && rev.Message != "" {
			line += ", " + rev.Message
		}
	} else if cur != "" {
		p.logger.Warn("database revision is not in the scripts directory", "revision", cur)
	}
	return p.out.Success(result, line)
}
