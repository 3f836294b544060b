package main

import (
	"errors"

	"github.com/lacelang/lace"
	"github.com/spf13/cobra"
)

func (a *app) evalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "eval <code>",
		Aliases: []string{"e"},
		Short:   "Evaluate code given on the command line",
		Example: `  lace eval '2 ** 10;'
  lace eval -o json '[1, "a"] + [none];'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return errors.New("no code provided")
			}
			src := &source{name: "<eval>", text: args[0]}
			opts, err := a.options(cmd.Context(), cmd, src)
			if err != nil {
				return err
			}
			result, err := lace.Eval(cmd.Context(), src.text, opts...)
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringToString("var", nil, "global variables as name=value")
	return cmd
}
