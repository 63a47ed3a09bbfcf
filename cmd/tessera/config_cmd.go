package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Validate and print the effective compiler configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			if opts.Path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", opts.Path)
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(opts)
		},
	}
}
