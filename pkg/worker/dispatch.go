package worker

import (
	"context"
	"runtime/debug"

	"github.com/robfig/cron/v3"

	"github.com/motoyard/motoyard-api/internal/service/dispatch"
	"github.com/motoyard/motoyard-api/pkg/logger"
)

// DispatchWorker runs the content dispatcher on a cron schedule. Missing a
// tick is harmless; due items just wait for the next pass.
type DispatchWorker struct {
	service  dispatch.Servicer
	schedule string
	logger   *logger.Logger
	cron     *cron.Cron
}

func NewDispatchWorker(service dispatch.Servicer, schedule string, logger *logger.Logger) *DispatchWorker {
	if schedule == "" {
		schedule = "* * * * *"
	}
	return &DispatchWorker{
		service:  service,
		schedule: schedule,
		logger:   logger,
	}
}

func (w *DispatchWorker) Start(ctx context.Context) error {
	w.cron = cron.New()

	_, err := w.cron.AddFunc(w.schedule, func() {
		w.safeRun(ctx)
	})
	if err != nil {
		return err
	}

	w.cron.Start()

	<-ctx.Done()
	stopped := w.cron.Stop()
	// Let an in-flight pass finish so claimed items get their outcome
	// recorded.
	<-stopped.Done()
	return nil
}

func (w *DispatchWorker) safeRun(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error(nil, "dispatch pass panicked", map[string]interface{}{
				"panic": r,
				"stack": string(debug.Stack()),
			})
		}
	}()

	report, err := w.service.Run(ctx)
	if err != nil {
		w.logger.Error(err, "dispatch pass failed", nil)
		return
	}

	if report.Processed > 0 {
		w.logger.Info("dispatch pass complete", map[string]interface{}{
			"processed":  report.Processed,
			"successful": report.Successful,
			"failed":     report.Failed,
		})
	}
}
