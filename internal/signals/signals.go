package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
)

type Handler struct {
	logger  logger.Logger
	signals []os.Signal
}

func NewHandler(logger logger.Logger) *Handler {
	return &Handler{
		logger:  logger.WithField("component", "signals"),
		signals: []os.Signal{syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP},
	}
}

// Handle calls shutdownFunc on the first termination signal. It returns
// when a signal arrived or ctx is done.
func (h *Handler) Handle(ctx context.Context, shutdownFunc func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, h.signals...)
	defer signal.Stop(sigChan)

	h.wait(ctx, sigChan, shutdownFunc)
}

func (h *Handler) wait(ctx context.Context, sigChan <-chan os.Signal, shutdownFunc func()) {
	select {
	case <-ctx.Done():
		h.logger.Debug("Signal handler context cancelled")
		return
	case sig := <-sigChan:
		h.logger.WithField("signal", sig.String()).Info("Received signal")
		shutdownFunc()
	}
}
