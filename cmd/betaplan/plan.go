package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"beta-than-ever/planner/internal/planner"
	"beta-than-ever/planner/internal/problem"
	"beta-than-ever/planner/internal/telemetry"
	"beta-than-ever/planner/logging"
	loggingSinks "beta-than-ever/planner/logging/sinks"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type planOptions struct {
	format        string
	concurrency   int
	maxExpansions int
	timeout       time.Duration
	watch         bool
}

// planned is the outcome of one problem file.
type planned struct {
	Path   string
	Name   string
	Result planner.Result
	Err    error
}

func (c *cli) planCmd() *cobra.Command {
	opts := planOptions{format: formatText, concurrency: runtime.GOMAXPROCS(0)}
	cmd := &cobra.Command{
		Use:   "plan FILE...",
		Short: "Plan one or more problem files",
		Long: `Plan reads YAML or JSON problem files and prints the move sequence for
each. Unreachable goals and exhausted budgets are reported as outcomes; the
exit status is 2 when any file is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatText && opts.format != formatJSON {
				return &exitError{code: exitInvalid, err: fmt.Errorf("unknown format %q", opts.format)}
			}
			if opts.watch {
				return c.watch(cmd.Context(), args, opts)
			}
			return c.planOnce(cmd.Context(), args, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "f", opts.format, "output format: text or json")
	flags.IntVarP(&opts.concurrency, "concurrency", "j", opts.concurrency, "problems planned in parallel")
	flags.IntVar(&opts.maxExpansions, "max-expansions", 0, "cap on node expansions per problem (0 keeps the file's budget)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "deadline per problem (0 for none)")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "re-plan files when they change")
	return cmd
}

func (c *cli) planOnce(ctx context.Context, paths []string, opts planOptions) error {
	results, err := c.planFiles(ctx, paths, opts)
	if err != nil {
		return err
	}
	if err := c.render(results, opts.format); err != nil {
		return err
	}
	invalid := 0
	for _, r := range results {
		if r.Err != nil {
			invalid++
		}
	}
	if invalid > 0 {
		return &exitError{code: exitInvalid, err: fmt.Errorf("%d of %d problems could not be planned", invalid, len(results))}
	}
	return nil
}

// planFiles plans every path with at most opts.concurrency searches in flight.
// Per-file failures are recorded on the result; the returned error is only set
// when ctx ends.
func (c *cli) planFiles(ctx context.Context, paths []string, opts planOptions) ([]planned, error) {
	router, err := logging.NewRouter(logging.DefaultConfig(), logging.SystemClock{}, c.logger, map[string]logging.Sink{
		logging.SinkConsole: loggingSinks.NewConsole(c.logger),
	})
	if err != nil {
		return nil, err
	}
	defer router.Close(context.Background())

	p := planner.New(planner.Deps{Publisher: router})
	log := telemetry.WrapLogger(c.logger)

	results := make([]planned, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.concurrency, 1))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = planFile(gctx, p, path, opts)
			if results[i].Err != nil {
				log.Printf("%s: %v", path, results[i].Err)
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func planFile(ctx context.Context, p *planner.Planner, path string, opts planOptions) planned {
	out := planned{Path: path}
	doc, err := problem.Load(path)
	if err != nil {
		out.Err = err
		return out
	}
	out.Name = doc.Name
	q, err := doc.Query()
	if err != nil {
		out.Err = err
		return out
	}

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	out.Result, out.Err = p.Plan(ctx, q.WithExpansionCap(opts.maxExpansions))
	return out
}
