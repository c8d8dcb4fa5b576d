// Package main provides the Weft scheduler daemon. It keeps cron jobs in
// sync with the scheduled workflows in the store and fires executions when
// they come due.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/weftlabs/weft/pkg/scheduler"
	"github.com/weftlabs/weft/pkg/store"
)

type Manager struct {
	logger       *slog.Logger
	scheduler    *scheduler.Scheduler
	refreshEvery time.Duration
}

func NewManager(logger *slog.Logger, st store.Store, executor scheduler.Executor, refreshEvery time.Duration) *Manager {
	return &Manager{
		logger:       logger.With("module", "scheduler_manager"),
		scheduler:    scheduler.NewScheduler(st, executor, logger),
		refreshEvery: refreshEvery,
	}
}

// Start runs until the context ends or a termination signal arrives. Running
// jobs finish before Stop returns.
func (m *Manager) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.handleSignals(runCtx, cancel)

	if err := m.scheduler.Start(runCtx); err != nil {
		return err
	}

	go m.scheduler.RunRefreshLoop(runCtx, m.refreshEvery)

	m.logger.InfoContext(runCtx, "Scheduler running", "refresh_every", m.refreshEvery.String())

	<-runCtx.Done()

	m.scheduler.Stop()

	return nil
}

func (m *Manager) handleSignals(ctx context.Context, cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-signals:
			m.logger.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
}
