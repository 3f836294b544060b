package main

import (
	"fmt"

	"github.com/lacelang/lace/bytecode"
	"github.com/lacelang/lace/dis"
	"github.com/spf13/cobra"
)

func (a *app) disCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [file]",
		Short: "Disassemble Lace bytecode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.readSource(cmd, args)
			if err != nil {
				return err
			}
			opts, err := a.options(cmd.Context(), cmd, src)
			if err != nil {
				return err
			}
			code, err := a.compile(cmd.Context(), src, opts)
			if err != nil {
				return err
			}

			// If a function name was provided, disassemble its code only
			if name, _ := cmd.Flags().GetString("func"); name != "" {
				code, err = findFunction(code, name)
				if err != nil {
					return err
				}
			}
			recursive, _ := cmd.Flags().GetBool("recursive")
			return dis.PrintCode(code, cmd.OutOrStdout(), recursive)
		},
	}
	addInputFlags(cmd)
	cmd.Flags().String("func", "", "function to disassemble")
	cmd.Flags().BoolP("recursive", "r", false, "include nested functions")
	return cmd
}

// findFunction searches code and its descendants for a function by name.
func findFunction(code *bytecode.Code, name string) (*bytecode.Code, error) {
	for _, c := range code.Flatten()[1:] {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("function %q not found", name)
}
