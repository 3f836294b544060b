package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lacelang/lace/bytecode"
	"github.com/spf13/cobra"
)

func (a *app) buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [file]",
		Short: "Compile a Lace program to a .lo object file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.readSource(cmd, args)
			if err != nil {
				return err
			}
			if src.code != nil {
				return errors.New("input is already an object file")
			}
			opts, err := a.options(cmd.Context(), cmd, src)
			if err != nil {
				return err
			}
			code, err := a.compile(cmd.Context(), src, opts)
			if err != nil {
				return err
			}
			data, err := bytecode.Marshal(code)
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("out")
			switch {
			case output != "":
			case src.manifest != nil:
				output = src.manifest.OutputPath()
			case strings.HasPrefix(src.name, "<"):
				return errors.New("--out is required when compiling --code or --stdin")
			default:
				output = strings.TrimSuffix(src.name, filepath.Ext(src.name)) + ".lo"
			}
			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			stats := code.Stats()
			a.logger.Info().Str("output", output).Int("bytes", len(data)).Msg("built")
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d functions, %d instructions, %d bytes)\n",
				green("wrote"), output, stats.FunctionCount, stats.InstructionCount, len(data))
			return nil
		},
	}
	addInputFlags(cmd)
	cmd.Flags().String("out", "", "output path (default: input with a .lo extension)")
	return cmd
}
