package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/risor-io/tessera/bytecode"
	"github.com/risor-io/tessera/dis"
)

func readUnit(path string) (*bytecode.Code, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	code, err := bytecode.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return code, nil
}

func newDisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis FILE",
		Short: "Disassemble a serialized unit and its nested units",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readUnit(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			funcName, _ := cmd.Flags().GetString("func")
			if funcName == "" {
				return dis.PrintCode(code, out)
			}
			// Disassemble only the named unit
			for _, unit := range code.Flatten() {
				if unit.Name() != funcName {
					continue
				}
				instructions, err := dis.Disassemble(unit)
				if err != nil {
					return err
				}
				return dis.Print(instructions, out)
			}
			return fmt.Errorf("function %q not found", funcName)
		},
	}
	cmd.Flags().String("func", "", "Name of the nested unit to disassemble")
	return cmd
}

func newFingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint FILE...",
		Short: "Print the content hash of serialized units",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				code, err := readUnit(path)
				if err != nil {
					return err
				}
				sum, err := code.Fingerprint()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%016x  %s\n", sum, path)
			}
			return nil
		},
	}
}
