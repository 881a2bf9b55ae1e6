package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/revline/internal/engine"
	"github.com/roach88/revline/internal/ir"
)

// StampOptions holds flags for the stamp command.
type StampOptions struct {
	*RootOptions
	SQL bool
	Tag string
}

// NewStampCommand creates the stamp command.
func NewStampCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StampOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stamp <revision>",
		Short: "Set the database's revision without running any revision",
		Long: `Record the given revision as current without executing any upgrade or
downgrade. Use it to adopt an existing database, or after fixing a failed
step by hand. "base" clears the marker.

Example:
  revline stamp head
  revline stamp --sql ae10 > stamp.sql`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStamp(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.SQL, "sql", false, "write SQL to stdout instead of running it")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "arbitrary label recorded with the stamp")
	return cmd
}

func runStamp(opts *StampOptions, ref string, cmd *cobra.Command) error {
	p, err := loadProject(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	dest, err := p.graph.Resolve(ref)
	if err != nil {
		return fail(p.out, "", err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	var target engine.Target
	if opts.SQL {
		p.out.Writer = cmd.ErrOrStderr()
		t, err := p.openScript(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		target = t
	} else {
		st, err := p.openStore()
		if err != nil {
			return err
		}
		target = st
	}

	err = engine.Stamp(ctx, target, dest, engine.Options{Direction: ir.Upgrade, Tag: opts.Tag, Logger: p.logger})
	if err != nil {
		return fail(p.out, "", err)
	}
	if opts.SQL {
		return nil
	}
	result := map[string]string{"current": dest}
	if opts.Tag != "" {
		result["tag"] = opts.Tag
	}
	return p.out.Success(result, fmt.Sprintf("Stamped %s", displayID(dest)))
}
