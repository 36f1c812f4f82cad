package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"beta-than-ever/planner/internal/app"
)

// server runs the planning service configured only from BETAPLAN_*
// environment variables, for container deployments.
func main() {
	cfg, errs := app.ConfigFromEnv(app.DefaultConfig(), os.LookupEnv)
	for _, err := range errs {
		log.Printf("ignoring environment override: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}
