package main

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openchaos/chaosboard/pkg/flags"
)

// QueryFlags are the flags of the one shot commands that print a report and exit.
type QueryFlags struct {
	*CommonFlags
	OutputFlags *flags.OutputFlags
	Timeout     time.Duration
}

func NewQueryFlags() *QueryFlags {
	return &QueryFlags{
		CommonFlags: NewCommonFlags(),
		OutputFlags: flags.NewOutputFlags(),
		Timeout:     5 * time.Minute,
	}
}

func (f *QueryFlags) BindFlags(fs *pflag.FlagSet) {
	f.CommonFlags.BindFlags(fs)
	f.OutputFlags.BindFlags(fs)
	fs.DurationVar(&f.Timeout, "timeout", f.Timeout, "Give up if the report is not ready within this time")
}

// run builds the leaderboard, calls report and prints its result.
func (f *QueryFlags) run(report func(ctx context.Context, deps *leaderboardDeps) (interface{}, error)) error {
	ctx, cancel := context.WithTimeout(context.Background(), f.Timeout)
	defer cancel()

	deps, err := f.build(ctx)
	if err != nil {
		return err
	}

	result, err := report(ctx, deps)
	if err != nil {
		return err
	}

	out, err := f.OutputFlags.Render(result)
	if err != nil {
		return errors.WithMessage(err, "couldn't render output")
	}
	_, err = os.Stdout.Write(out)
	return err
}

func NewRankCommand() *cobra.Command {
	f := NewQueryFlags()
	var all bool

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Print the ranked views of the open pull requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(func(ctx context.Context, deps *leaderboardDeps) (interface{}, error) {
				if all {
					prs, err := deps.leaderboard.GetOpenPRs(ctx)
					return prs, errors.WithMessage(err, "couldn't rank open pull requests")
				}
				organized, err := deps.leaderboard.GetOrganizedPRs(ctx)
				return organized, errors.WithMessage(err, "couldn't rank open pull requests")
			})
		},
	}

	f.BindFlags(cmd.Flags())
	cmd.Flags().BoolVar(&all, "all", false, "Print every open pull request in leaderboard order instead of the ranked views")
	return cmd
}
