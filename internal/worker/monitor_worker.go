package worker

import (
	"context"
	"sync"

	"github.com/amir-mohammad-HP/cronwatch/internal/types"
	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
	"github.com/amir-mohammad-HP/cronwatch/pkg/monitor"
)

// MonitorWorker applies the monitor section of the config to a Monitor
// and logs its transitions for the process lifetime.
type MonitorWorker struct {
	mon    *monitor.Monitor
	config types.MonitorConfig
	logger logger.Logger

	mu          sync.Mutex
	unsubscribe func()
	wg          sync.WaitGroup
}

func NewMonitorWorker(cfg types.MonitorConfig, mon *monitor.Monitor, log logger.Logger) *MonitorWorker {
	if log == nil {
		log = logger.NewNop()
	}
	return &MonitorWorker{
		mon:    mon,
		config: cfg,
		logger: log.WithField("component", "monitor-worker"),
	}
}

// Start begins polling when the monitor is enabled and, if configured,
// probes once right away.
func (mw *MonitorWorker) Start(ctx context.Context) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	if !mw.config.Enabled {
		mw.logger.Info("monitor disabled, not polling")
		return nil
	}
	if mw.unsubscribe != nil {
		return nil
	}

	if err := mw.mon.StartPolling(mw.config.Endpoint, mw.config.PollInterval, mw.config.Timeout); err != nil {
		return err
	}

	updates, cancel := mw.mon.Subscribe()
	mw.unsubscribe = cancel
	mw.wg.Add(1)
	go mw.watch(updates)

	if mw.config.CheckOnStart {
		if _, err := mw.mon.CheckNow(ctx); err != nil {
			mw.logger.Warn("initial check skipped: %s", err)
		}
	}
	return nil
}

func (mw *MonitorWorker) watch(updates <-chan monitor.State) {
	defer mw.wg.Done()

	for st := range updates {
		if st.Status == monitor.Checking {
			continue
		}
		mw.logger.WithFields(map[string]any{
			"endpoint":    st.Endpoint,
			"http_status": st.LastHTTPStatus,
			"latency_ms":  st.LastLatency.Milliseconds(),
		}).Debug("gateway %s", st.Status)
	}
}

// Stop halts polling and leaves the last status readable.
func (mw *MonitorWorker) Stop() error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	mw.mon.StopPolling()
	if mw.unsubscribe != nil {
		mw.unsubscribe()
		mw.unsubscribe = nil
		mw.wg.Wait()
	}
	return nil
}

func (mw *MonitorWorker) Monitor() *monitor.Monitor {
	return mw.mon
}
