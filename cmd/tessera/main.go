package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/risor-io/tessera/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

var red = color.New(color.FgRed).SprintFunc()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fatal(err)
	}
}

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func isTerminalOutput() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tessera",
		Short:         "Inspect compiled bytecode units",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			noColor, _ := cmd.Flags().GetBool("no-color")
			if noColor || !isTerminalOutput() {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().String("config", "", "Path to a "+config.FileName+" file")
	root.PersistentFlags().Bool("no-color", false, "Disable colored output")

	root.AddCommand(
		newDisCmd(),
		newFingerprintCmd(),
		newConfigCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "tessera %s (%s)\n", version, commit)
			},
		},
	)
	return root
}

// loadConfig returns the options named by --config, or those found by
// searching upwards from the working directory.
func loadConfig(cmd *cobra.Command) (*config.Options, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.Load(path)
	}
	return config.FindAndLoad(".")
}
