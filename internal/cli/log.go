package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the marker changes recorded in the database",
		Long: `List every change of the database's revision marker, oldest first: each
upgrade or downgrade step and each stamp.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(rootOpts, cmd)
		},
	}
}

func runLog(opts *RootOptions, cmd *cobra.Command) error {
	p, err := openProject(opts, cmd)
	if err != nil {
		return err
	}
	st, err := p.inspectStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	entries, err := st.History(ctx)
	if err != nil {
		return fail(p.out, ErrCodeDatabase, err)
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%4d  %-5s  %s -> %s", e.Seq, e.Kind, displayID(e.From), displayID(e.To)))
	}
	if len(lines) == 0 {
		lines = append(lines, "No changes recorded")
	}
	return p.out.Success(entries, lines...)
}
