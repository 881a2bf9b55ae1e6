package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/revline/internal/engine"
	"github.com/roach88/revline/internal/graph"
	"github.com/roach88/revline/internal/ir"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	IndicateCurrent bool
}

// RevisionInfo describes one revision in JSON output.
type RevisionInfo struct {
	Revision      string   `json:"revision"`
	DownRevision  string   `json:"down_revision"`
	Message       string   `json:"message"`
	IsHead        bool     `json:"is_head"`
	IsBranchPoint bool     `json:"is_branch_point"`
	IsCurrent     bool     `json:"is_current,omitempty"`
	Next          []string `json:"next"`
	Path          string   `json:"path,omitempty"`
	Checksum      string   `json:"checksum"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List revisions, newest first",
		Long: `List every revision from the heads down to the roots. A branch point is
listed after all of its branches; each head starts a new paragraph.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.IndicateCurrent, "indicate-current", "i", false, "mark the database's current revision")
	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	p, err := loadProject(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	current := ""
	if opts.IndicateCurrent {
		st, err := p.inspectStore()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		current, err = engine.CurrentPosition(ctx, st)
		if err != nil {
			return fail(p.out, ErrCodeDatabase, err)
		}
	}

	infos := []RevisionInfo{}
	var lines []string
	for e := range p.graph.Walk() {
		info := revisionInfo(e)
		info.IsCurrent = current != "" && e.Revision.ID == current
		infos = append(infos, info)

		if e.IsHead {
			lines = append(lines, "")
		}
		lines = append(lines, logEntry(e, info.IsCurrent, opts.Verbose)...)
	}

	if len(infos) == 0 {
		return p.out.Success(infos, "No revisions found")
	}
	return p.out.Success(infos, lines...)
}

func revisionInfo(e graph.Entry) RevisionInfo {
	return RevisionInfo{
		Revision:      e.Revision.ID,
		DownRevision:  e.Revision.DownRevision,
		Message:       e.Revision.Message,
		IsHead:        e.IsHead,
		IsBranchPoint: e.IsBranchPoint,
		Next:          append([]string{}, e.NextRev...),
		Path:          e.Revision.Path,
		Checksum:      ir.MustChecksum(e.Revision),
	}
}

// logEntry renders "parent -> id (head) (branchpoint), message". Verbose adds
// the source path and checksum on indented lines.
func logEntry(e graph.Entry, current, verbose bool) []string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s", displayID(e.Revision.DownRevision), e.Revision.ID)
	if e.IsHead {
		b.WriteString(" (head)")
	}
	if e.IsBranchPoint {
		b.WriteString(" (branchpoint)")
	}
	if current {
		b.WriteString(" (current)")
	}
	if e.Revision.Message != "" {
		b.WriteString(", " + e.Revision.Message)
	}

	lines := []string{b.String()}
	if verbose {
		if e.Revision.Path != "" {
			lines = append(lines, "    Path: "+e.Revision.Path)
		}
		lines = append(lines, "    Checksum: "+ir.MustChecksum(e.Revision))
	}
	return lines
}
