package worker

import (
	"context"
	"time"
)

// TickReport summarises one tick.
type TickReport struct {
	At      time.Time
	Due     int
	Ran     int
	Skipped int
	Failed  int
}

// Tick runs every job due at at, earliest NextRun first. A failing job is
// logged and the tick carries on. Once Stop is requested no further job
// is dispatched.
func (w *Worker) Tick(ctx context.Context, at time.Time) TickReport {
	due := w.registry.Due(at)
	report := TickReport{At: at, Due: len(due)}

	for _, j := range due {
		if w.stopping.Load() || ctx.Err() != nil {
			report.Skipped += len(due) - report.Ran - report.Skipped
			break
		}

		_, ran, err := w.registry.RunDue(ctx, j.Name, at)
		switch {
		case !ran:
			report.Skipped++
		case err != nil:
			report.Ran++
			report.Failed++
			w.logger.WithField("job", j.Name).Error("scheduled run failed: %s", err)
		default:
			report.Ran++
		}
	}

	if report.Due > 0 {
		w.logger.WithFields(map[string]any{
			"due":     report.Due,
			"ran":     report.Ran,
			"skipped": report.Skipped,
			"failed":  report.Failed,
		}).Debug("tick at %s", at.Format(time.RFC3339))
	}

	w.lastMu.Lock()
	w.lastTick = report
	w.lastMu.Unlock()
	return report
}
