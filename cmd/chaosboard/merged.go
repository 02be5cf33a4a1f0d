package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewMergedCommand() *cobra.Command {
	f := NewQueryFlags()

	cmd := &cobra.Command{
		Use:   "merged",
		Short: "Print recently merged pull requests, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(func(ctx context.Context, deps *leaderboardDeps) (interface{}, error) {
				merged, err := deps.leaderboard.GetMergedPRs(ctx)
				return merged, errors.WithMessage(err, "couldn't list merged pull requests")
			})
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
