package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewScheduleCommand() *cobra.Command {
	f := NewQueryFlags()

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the next merge time and the pull request in line for it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(func(ctx context.Context, deps *leaderboardDeps) (interface{}, error) {
				schedule, err := deps.leaderboard.GetMergeSchedule(ctx)
				return schedule, errors.WithMessage(err, "couldn't compute merge schedule")
			})
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
