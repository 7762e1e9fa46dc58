package main

import (
	"context"
	"fmt"
	"time"

	"github.com/amir-mohammad-HP/cronwatch/internal/job"
	"github.com/amir-mohammad-HP/cronwatch/internal/schedule"
	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
)

func main() {
	log := logger.DefaultLogger()
	defer log.Close()

	reg := job.NewRegistry(job.WithLogger(log))

	for _, def := range []struct{ name, spec, payload string }{
		{"daily-summary", "every 24h", `{"channel": "general", "type": "summary"}`},
		{"weekly-report", "at Monday 09:00", `{"channel": "reports", "format": "markdown"}`},
		{"health-check", "cron 0 */6 * * *", `{"endpoint": "/health", "timeout": 30}`},
	} {
		if _, err := reg.Add(job.New(def.name, schedule.MustParse(def.spec), []byte(def.payload))); err != nil {
			log.Error("add %s: %s", def.name, err)
		}
	}

	if _, err := reg.RunNow(context.Background(), "daily-summary"); err != nil {
		log.Error("run: %s", err)
	}

	for _, j := range reg.List() {
		fmt.Printf("%-14s %-20s next %s\n", j.Name, j.Schedule, j.NextRun.Format(time.RFC3339))
	}

	st := reg.Stats()
	log.WithFields(map[string]any{
		"total":   st.Total,
		"enabled": st.Enabled,
	}).Info("next wake %s (%s)", st.NextWake.Format(time.RFC3339), st.NextJob)
}
