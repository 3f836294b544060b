package main

import (
	"context"
	"time"

	"github.com/lacelang/lace"
	"github.com/lacelang/lace/vm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Run a Lace source or object file",
		Long: `Run a Lace program from a .lace source file, a .lo object file, --code
or --stdin. With no input, the entry of the nearest lace.toml is run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args)
		},
	}
	addInputFlags(cmd)
	cmd.Flags().Bool("trace", false, "log every instruction, call and return at debug level")
	cmd.Flags().Duration("timeout", 0, "stop the program after this long")
	cmd.Flags().Bool("timing", false, "show execution time")
	cmd.Flags().StringToString("var", nil, "global variables as name=value")
	return cmd
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	src, err := a.readSource(cmd, args)
	if err != nil {
		return err
	}
	opts, err := a.options(ctx, cmd, src)
	if err != nil {
		return err
	}
	if trace, _ := cmd.Flags().GetBool("trace"); trace {
		logger := a.logger.Level(zerolog.DebugLevel)
		opts = append(opts, lace.WithObserver(vm.NewTraceObserver(logger)))
	}

	code, err := a.compile(ctx, src, opts)
	if err != nil {
		return err
	}
	a.logger.Debug().Str("source", src.name).Int("instructions", code.InstructionCount()).Msg("compiled")

	start := time.Now()
	result, err := lace.Run(ctx, code, opts...)
	elapsed := time.Since(start)
	a.logger.Debug().Dur("elapsed", elapsed).Err(err).Msg("finished")
	if err != nil {
		return err
	}
	if err := a.printResult(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if timing, _ := cmd.Flags().GetBool("timing"); timing {
		cmd.PrintErrf("%s %s\n", bold("elapsed:"), elapsed)
	}
	return nil
}
