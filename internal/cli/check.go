package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/revline/internal/ir"
)

// CheckResult summarizes the revision graph.
type CheckResult struct {
	Valid        bool     `json:"valid"`
	Revisions    int      `json:"revisions"`
	Heads        []string `json:"heads"`
	Bases        []string `json:"bases"`
	BranchPoints []string `json:"branch_points"`
	Problems     []string `json:"problems,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the revision files and report on the graph",
		Long: `Load every revision file and verify the graph: identifiers are unique,
every parent exists, there are no cycles, and there is exactly one head and
one root so "head" and "base" resolve. Revisions with identical bodies are
reported too.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd)
		},
	}
}

func runCheck(opts *RootOptions, cmd *cobra.Command) error {
	p, err := loadProject(opts, cmd)
	if err != nil {
		return err
	}
	g := p.graph

	result := CheckResult{
		Revisions:    g.Len(),
		Heads:        g.Heads(),
		Bases:        g.Bases(),
		BranchPoints: g.BranchPoints(),
	}
	if len(result.Heads) > 1 {
		result.Problems = append(result.Problems, "multiple heads: "+strings.Join(result.Heads, ", "))
	}
	if len(result.Bases) > 1 {
		result.Problems = append(result.Problems, "multiple bases: "+strings.Join(result.Bases, ", "))
	}
	result.Problems = append(result.Problems, duplicateBodies(g.IDs(), func(id string) *ir.Revision {
		rev, _ := g.Get(id)
		return rev
	})...)
	result.Valid = len(result.Problems) == 0

	if result.Valid {
		return p.out.Success(result,
			fmt.Sprintf("Revisions: %d", result.Revisions),
			"Heads: "+joinOrNone(result.Heads),
			"Bases: "+joinOrNone(result.Bases),
			"Branch points: "+joinOrNone(result.BranchPoints),
			"✓ Revision graph OK",
		)
	}
	return outputCheckProblems(p.out, result)
}

// duplicateBodies reports revisions whose upgrade and downgrade statements
// are identical to an earlier one and non-empty.
func duplicateBodies(ids []string, get func(string) *ir.Revision) []string {
	seen := map[string]string{}
	var problems []string
	for _, id := range ids {
		rev := get(id)
		p, ok := rev.Payload.(ir.SQLPayload)
		if !ok || (len(p.Up) == 0 && len(p.Down) == 0) {
			continue
		}
		key, err := ir.MarshalCanonical(map[string]any{
			"upgrade":   p.Up,
			"downgrade": p.Down,
		})
		if err != nil {
			continue
		}
		if first, dup := seen[string(key)]; dup {
			problems = append(problems, fmt.Sprintf("revision %s repeats the statements of %s", id, first))
			continue
		}
		seen[string(key)] = id
	}
	return problems
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}

// outputCheckProblems reports a failed check; exit code 1.
func outputCheckProblems(f *OutputFormatter, result CheckResult) error {
	if f.JSON() {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeCheck,
				Message: result.Problems[0],
			},
		}
		encoder := json.NewEncoder(f.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("check failed with %d problem(s)", len(result.Problems)))
	}

	fmt.Fprintln(f.Writer, "✗ Revision graph has problems")
	fmt.Fprintln(f.Writer)
	for _, problem := range result.Problems {
		fmt.Fprintf(f.Writer, "  %s: %s\n", ErrCodeCheck, problem)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("check failed with %d problem(s)", len(result.Problems)))
}
