package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// BranchInfo is one branch point and its immediate children.
type BranchInfo struct {
	Revision string   `json:"revision"`
	Message  string   `json:"message"`
	Children []string `json:"children"`
}

// NewBranchesCommand creates the branches command.
func NewBranchesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "branches",
		Short:         "Show revisions that more than one revision builds on",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBranches(rootOpts, cmd)
		},
	}
}

func runBranches(opts *RootOptions, cmd *cobra.Command) error {
	p, err := loadProject(opts, cmd)
	if err != nil {
		return err
	}

	branches := []BranchInfo{}
	var lines []string
	for _, id := range p.graph.BranchPoints() {
		rev, _ := p.graph.Get(id)
		children := p.graph.Children(id)
		branches = append(branches, BranchInfo{Revision: id, Message: rev.Message, Children: children})

		lines = append(lines, fmt.Sprintf("%s -> %s (branchpoint), %s", displayID(rev.DownRevision), id, rev.Message))
		for _, child := range children {
			line := "    -> " + child
			if p.graph.IsHead(child) {
				line += " (head)"
			}
			if c, ok := p.graph.Get(child); ok && c.Message != "" {
				line += ", " + c.Message
			}
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "No branch points")
	}
	return p.out.Success(branches, lines...)
}
