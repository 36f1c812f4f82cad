package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	exitFailure = 1
	exitInvalid = 2
)

// exitError carries the process exit status for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

type cli struct {
	stdout  io.Writer
	stderr  io.Writer
	styled  bool
	verbose bool
	logger  *zap.Logger
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, isTerminal(os.Stdout)))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer, styled bool) int {
	c := &cli{stdout: stdout, stderr: stderr, styled: styled}
	root := c.root()
	root.SetArgs(args)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if c.logger != nil {
		c.logger.Sync()
	}
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "betaplan: %v\n", err)
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return exitFailure
}

func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "betaplan",
		Short:         "Plan four-limb climbing sequences on a hold wall",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.logger = c.buildLogger()
			return nil
		},
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &exitError{code: exitInvalid, err: err}
	})
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(c.planCmd(), c.serveCmd(), c.schemaCmd())
	return root
}

// buildLogger writes JSON logs to the command's error stream, warnings and
// above unless --verbose is set.
func (c *cli) buildLogger() *zap.Logger {
	level := zapcore.WarnLevel
	if c.verbose {
		level = zapcore.DebugLevel
	}
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(c.stderr), zap.NewAtomicLevelAt(level))
	return zap.New(core)
}
