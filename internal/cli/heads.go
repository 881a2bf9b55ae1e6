package cli

import (
	"github.com/spf13/cobra"
)

// NewHeadsCommand creates the heads command.
func NewHeadsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "heads",
		Short:         "Show revisions with no descendants",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeads(rootOpts, cmd)
		},
	}
}

func runHeads(opts *RootOptions, cmd *cobra.Command) error {
	p, err := loadProject(opts, cmd)
	if err != nil {
		return err
	}

	heads := p.graph.Heads()
	lines := make([]string, 0, len(heads))
	for _, id := range heads {
		line := id + " (head)"
		if rev, ok := p.graph.Get(id); ok && opts.Verbose && rev.Message != "" {
			line += ", " + rev.Message
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, "No revisions found")
	}
	return p.out.Success(map[string][]string{"heads": heads}, lines...)
}
