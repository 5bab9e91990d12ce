package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fleetgrid/evsched/app"
	"github.com/fleetgrid/evsched/config"
	"github.com/fleetgrid/evsched/core/coordinator"
	"github.com/fleetgrid/evsched/core/events"
	"github.com/fleetgrid/evsched/infra/logger"
)

// runCoordinator loads configuration, builds the App, subscribes a logging
// observer to its run-event bus, executes one coordinator pass in mode, and
// prints the result as JSON.
func runCoordinator(cmd *cobra.Command, mode coordinator.Mode) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := runParamsFromFlags(mode)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("cmd").Errorf("app close: %v", err)
		}
	}()

	log := logger.New("cmd")
	sub := svc.Events().Subscribe()
	defer svc.Events().Unsubscribe(sub)
	go func() {
		for ev := range sub {
			logEvent(log, ev)
		}
	}()

	res, err := svc.Run(ctx, p)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func logEvent(log logger.Logger, ev any) {
	switch e := ev.(type) {
	case events.SolverAttempted:
		log.Debugf("solver attempted stage=%s run=%s", e.Stage, e.RunID)
	case events.SolverFellBack:
		log.Warnf("solver fell back stage=%s run=%s reason=%s", e.Stage, e.RunID, e.Reason)
	case events.QualityGateFailed:
		log.Warnf("quality gate failed run=%s score=%.2f threshold=%.2f", e.RunID, e.Score, e.Threshold)
	case events.StageCompleted:
		log.Infof("stage completed stage=%s run=%s duration=%.3fs fallback=%v", e.Stage, e.RunID, e.DurationSeconds, e.Fallback)
	}
}
