package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"beta-than-ever/planner/internal/app"
)

func (c *cli) serveCmd() *cobra.Command {
	var (
		addr          string
		maxExpansions int
		planTimeout   time.Duration
		logJSON       string
		pprof         bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning API over HTTP and websocket",
		Long: `Serve exposes POST /plan, GET /ws, GET /health and, unless disabled,
GET /metrics. Flags override the BETAPLAN_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, errs := app.ConfigFromEnv(app.DefaultConfig(), os.LookupEnv)
			for _, err := range errs {
				c.logger.Warn("ignoring environment override", zap.Error(err))
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Addr = addr
			}
			if flags.Changed("max-expansions") {
				cfg.MaxExpansions = maxExpansions
			}
			if flags.Changed("plan-timeout") {
				cfg.PlanTimeout = planTimeout
			}
			if flags.Changed("log-json") {
				cfg.LogJSONPath = logJSON
			}
			if flags.Changed("pprof") {
				cfg.Observability.EnablePprof = pprof
			}
			cfg.Logging.Console.Development = c.verbose
			return app.Run(cmd.Context(), cfg)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", app.DefaultAddr, "listen address")
	flags.IntVar(&maxExpansions, "max-expansions", 0, "cap on node expansions per request (0 for none)")
	flags.DurationVar(&planTimeout, "plan-timeout", 0, "deadline per request (default 10s)")
	flags.StringVar(&logJSON, "log-json", "", "append planner events as JSON lines to this file")
	flags.BoolVar(&pprof, "pprof", false, "mount /debug/pprof")
	return cmd
}
