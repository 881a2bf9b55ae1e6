package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/revline/internal/engine"
	"github.com/roach88/revline/internal/graph"
	"github.com/roach88/revline/internal/ir"
)

// MigrateOptions holds flags for upgrade and downgrade.
type MigrateOptions struct {
	*RootOptions
	SQL bool   // Emit a script instead of touching the database
	Tag string // Caller label recorded in the script header and result
}

// MigrateResult is the JSON payload of a finished upgrade or downgrade.
type MigrateResult struct {
	Direction string              `json:"direction"`
	Start     string              `json:"start"`
	Final     string              `json:"final"`
	Applied   []engine.StepResult `json:"applied"`
	Tag       string              `json:"tag,omitempty"`
}

// NewUpgradeCommand creates the upgrade command.
func NewUpgradeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "upgrade <revision>",
		Short: "Upgrade the database to a later revision",
		Long: `Apply every revision between the database's current revision and the
target, oldest first, each in its own transaction.

The target may be an identifier, a unique prefix of one, or "head".
With --sql nothing is executed; the statements are written to stdout and
the target may be a range "start:end".

Example:
  revline upgrade head
  revline upgrade ae10
  revline upgrade --sql base:head > upgrade.sql`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts, ir.Upgrade, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.SQL, "sql", false, "write SQL to stdout instead of running it")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "arbitrary label recorded with the run")
	return cmd
}

// NewDowngradeCommand creates the downgrade command.
func NewDowngradeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "downgrade <revision>",
		Short: "Revert the database to an earlier revision",
		Long: `Revert every revision applied after the target, newest first, each in its
own transaction. "base" reverts everything.

With --sql the starting revision cannot be read from a database and must
be given as a range "start:end".

Example:
  revline downgrade base
  revline downgrade --sql head:ae10 > downgrade.sql`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts, ir.Downgrade, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.SQL, "sql", false, "write SQL to stdout instead of running it")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "arbitrary label recorded with the run")
	return cmd
}

func runMigrate(opts *MigrateOptions, dir ir.Direction, ref string, cmd *cobra.Command) error {
	p, err := loadProject(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	rng, err := graph.ParseRange(ref, opts.SQL)
	if err != nil {
		return fail(p.out, "", err)
	}

	plan := engine.UpgradePlan(p.graph, rng.Destination)
	if dir == ir.Downgrade {
		plan = engine.DowngradePlan(p.graph, rng.Destination)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if opts.SQL {
		return runOffline(ctx, p, dir, rng, opts.Tag, plan, cmd)
	}

	st, err := p.openStore()
	if err != nil {
		return err
	}
	p.logger.Debug("opened database", "path", p.cfg.Database)

	report, err := engine.RunSession(ctx, st, engine.Options{Direction: dir, Tag: opts.Tag, Logger: p.logger}, plan)
	if err != nil {
		return fail(p.out, "", err)
	}

	result := MigrateResult{
		Direction: string(dir),
		Start:     report.Start,
		Final:     report.Final,
		Applied:   report.Applied,
		Tag:       report.Tag,
	}
	if len(report.Applied) == 0 {
		return p.out.Success(result, fmt.Sprintf("Already at %s; nothing to do", displayID(report.Final)))
	}

	verb := "Upgraded"
	if dir == ir.Downgrade {
		verb = "Downgraded"
	}
	return p.out.Success(result, fmt.Sprintf("%s %s -> %s (%d revision(s))",
		verb, displayID(report.Start), displayID(report.Final), len(report.Applied)))
}

// runOffline writes the planned steps as a script on stdout. Errors go to
// stderr so a failed run never looks like a valid script.
func runOffline(ctx context.Context, p *project, dir ir.Direction, rng graph.Range, tag string, plan engine.PlanFunc, cmd *cobra.Command) error {
	p.out.Writer = cmd.ErrOrStderr()

	var start string
	if rng.HasStart {
		s, err := p.graph.Resolve(rng.Start)
		if err != nil {
			return fail(p.out, "", err)
		}
		start = s
	}
	dest, err := p.graph.Resolve(rng.Destination)
	if err != nil {
		return fail(p.out, "", err)
	}

	target, err := p.openScript(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	_, err = engine.RunSession(ctx, target, engine.Options{
		Direction:        dir,
		StartingRevision: start,
		HasStart:         rng.HasStart,
		Destination:      dest,
		Tag:              tag,
		Logger:           p.logger,
	}, plan)
	if err != nil {
		return fail(p.out, "", err)
	}
	return nil
}
