package cli

import (
	"github.com/spf13/cobra"

	"github.com/xiaobogaga/logquery/util"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command for the logquery CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "logquery",
		Short: "Ad-hoc queries over load-balancer access logs",
		Long: `logquery runs filter/project/aggregate/sort/limit queries over
classic load-balancer access logs, from a file or standard input.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			util.SetVerbose(opts.Verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewQueryCommand(opts))

	return cmd
}
