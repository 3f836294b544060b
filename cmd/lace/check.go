package main

import (
	"fmt"

	"github.com/lacelang/lace"
	"github.com/lacelang/lace/errors"
	"github.com/lacelang/lace/typecheck"
	"github.com/spf13/cobra"
)

func (a *app) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Typecheck a Lace program without running it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.readSource(cmd, args)
			if err != nil {
				return err
			}
			if src.code != nil {
				return fmt.Errorf("%s: cannot check an object file", src.name)
			}
			opts, err := a.options(cmd.Context(), cmd, src)
			if err != nil {
				return err
			}
			diags, err := lace.Check(cmd.Context(), src.text, opts...)
			if err != nil {
				return err
			}
			if err := a.printDiagnostics(cmd, src.text, diags); err != nil {
				return err
			}
			if len(diags) > 0 {
				return fmt.Errorf("%s: %d typecheck problem(s)", src.name, len(diags))
			}
			return nil
		},
	}
	addInputFlags(cmd)
	return cmd
}

func (a *app) printDiagnostics(cmd *cobra.Command, source string, diags typecheck.Diagnostics) error {
	out := cmd.OutOrStdout()
	if a.v.GetString("output") == "json" {
		if diags == nil {
			diags = typecheck.Diagnostics{}
		}
		data, err := marshalJSON(diags, a.useColor())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	if len(diags) == 0 {
		fmt.Fprintln(out, green("ok"))
		return nil
	}
	fmt.Fprint(out, errors.NewFormatter(a.useColor()).FormatMultiple(
		diags.ToCompileErrors(source).ToFormattedMultiple()))
	return nil
}
