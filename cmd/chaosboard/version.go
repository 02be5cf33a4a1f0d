package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/openchaos/chaosboard/pkg/version"
)

// NewVersionCommand prints out chaosboard version information, in a similar style to other kube tools.
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Report version information for chaosboard",
		// Set persistent pre run to empty so we don't double print version info
		PersistentPreRun: NoPrintVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := version.Get()
			const flag = "output"
			of, err := cmd.Flags().GetString(flag)
			if err != nil {
				return errors.Wrapf(err, "error accessing flag %s for command %s", flag, cmd.Name())
			}
			switch of {
			case "":
				fmt.Fprintf(os.Stdout, "chaosboard %s built from %s\n", v.GitVersion, v.GitCommit)
			case "short":
				fmt.Fprintf(os.Stdout, "%s\n", v.GitCommit)
			case "yaml":
				y, err := yaml.Marshal(&v)
				if err != nil {
					return err
				}
				fmt.Fprint(os.Stdout, string(y))
			case "json":
				y, err := json.MarshalIndent(&v, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, string(y))
			default:
				return errors.Errorf("invalid output format: %s", of)
			}

			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output format; available options are 'yaml', 'json' and 'short'")
	return cmd
}

// PrintVersion logs the build commit before every command. It goes to the log, not stdout,
// so command output stays machine readable.
var PrintVersion = func(cmd *cobra.Command, args []string) {
	log.Infof("chaosboard built from %s", version.Get().GitCommit)
}

// NoPrintVersion is used as an empty PersistentPreRun function so we don't print version info
// for some commands.
var NoPrintVersion = func(cmd *cobra.Command, args []string) {
}
