package main

import (
	"bytes"
	"fmt"

	"github.com/lacelang/lace/batch"
	"github.com/lacelang/lace/vm"
	"github.com/spf13/cobra"
)

func (a *app) batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch file...",
		Short: "Run several programs in parallel",
		Long: `Run each file as an independent job on a pool of workers. Program output
is buffered per job and printed in argument order once all jobs finish.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			workers, _ := cmd.Flags().GetInt("workers")

			jobs := make([]batch.Job, len(args))
			outputs := make([]*bytes.Buffer, len(args))
			for i, path := range args {
				src, err := readFile(path)
				if err != nil {
					return err
				}
				opts, err := a.options(ctx, cmd, src)
				if err != nil {
					return err
				}
				code, err := a.compile(ctx, src, opts)
				if err != nil {
					return err
				}
				outputs[i] = &bytes.Buffer{}
				jobs[i] = batch.Job{ID: path, Code: code, Stdout: outputs[i]}
			}

			runner := &batch.Runner{Workers: workers, Logger: a.logger}
			if depth := a.v.GetInt("max-frame-depth"); depth > 0 {
				runner.Options = append(runner.Options, vm.WithMaxFrameDepth(depth))
			}
			results, err := runner.Run(ctx, jobs)

			out := cmd.OutOrStdout()
			for i, res := range results {
				status := green("ok")
				if res.Err != nil {
					status = yellow("failed")
				}
				fmt.Fprintf(out, "%s %s %s\n", bold("==>"), res.JobID, status)
				out.Write(outputs[i].Bytes())
				if res.Err == nil {
					if err := a.printResult(out, res.Value); err != nil {
						return err
					}
				}
			}
			return err
		},
	}
	cmd.Flags().IntP("workers", "w", 0, "number of programs to run at once (default GOMAXPROCS)")
	return cmd
}
