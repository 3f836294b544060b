// Package batch runs many compiled programs in parallel. Every job gets its
// own virtual machine, so no execution state is shared between jobs.
package batch

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/lacelang/lace/bytecode"
	"github.com/lacelang/lace/object"
	"github.com/lacelang/lace/vm"
	"github.com/rs/zerolog"
)

// Job is one program execution.
type Job struct {
	// ID identifies the job in results and logs. A random UUID is assigned
	// when empty.
	ID string

	Code      *bytecode.Code
	Globals   map[string]any
	Functions map[string]*bytecode.Code

	// Stdout receives the job's primitive output. Defaults to os.Stdout.
	Stdout io.Writer
}

// Result is the outcome of one job. Results are returned in job order.
type Result struct {
	JobID    string
	Value    object.Object
	Err      error
	Duration time.Duration
}

// Runner executes jobs on a bounded pool of goroutines.
type Runner struct {
	// Workers is the number of jobs run at once. Defaults to GOMAXPROCS.
	Workers int

	// Options are applied to every job's VM before the job's own settings.
	Options []vm.Option

	Logger zerolog.Logger
}

// Run executes jobs and waits for all of them. The returned error is a
// *multierror.Error holding every failed job's error, or nil if all jobs
// succeeded. Jobs not yet started when ctx is cancelled fail with the
// context's error.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	for i := range jobs {
		id := jobs[i].ID
		if id == "" {
			u, err := uuid.NewV4()
			if err != nil {
				return nil, fmt.Errorf("job id: %w", err)
			}
			id = u.String()
		}
		results[i].JobID = id
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(jobs))

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				r.runJob(ctx, &jobs[i], &results[i])
			}
		}()
	}

feed:
	for i := range jobs {
		select {
		case indexes <- i:
		case <-ctx.Done():
			for j := i; j < len(jobs); j++ {
				results[j].Err = ctx.Err()
			}
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	var merr *multierror.Error
	for _, res := range results {
		if res.Err != nil {
			merr = multierror.Append(merr, fmt.Errorf("job %s: %w", res.JobID, res.Err))
		}
	}
	return results, merr.ErrorOrNil()
}

func (r *Runner) runJob(ctx context.Context, job *Job, res *Result) {
	logger := r.Logger.With().Str("job_id", res.JobID).Logger()
	if job.Code == nil {
		res.Err = fmt.Errorf("no code to run")
		logger.Error().Err(res.Err).Msg("job failed")
		return
	}
	opts := make([]vm.Option, 0, len(r.Options)+3)
	opts = append(opts, r.Options...)
	opts = append(opts, vm.WithGlobals(job.Globals), vm.WithFunctions(job.Functions))
	if job.Stdout != nil {
		opts = append(opts, vm.WithStdout(job.Stdout))
	}

	logger.Debug().Str("source", job.Code.SourceTag()).Msg("job started")
	start := time.Now()
	res.Value, res.Err = vm.Run(ctx, job.Code, opts...)
	res.Duration = time.Since(start)
	if res.Err != nil {
		logger.Error().Err(res.Err).Dur("duration", res.Duration).Msg("job failed")
		return
	}
	logger.Debug().Dur("duration", res.Duration).Msg("job finished")
}
