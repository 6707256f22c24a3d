package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/alerting"
)

// AlertScheduler periodically runs threshold evaluation so alerts are
// raised without waiting for a manual trigger.
type AlertScheduler struct {
	engine     *alerting.Engine
	windowDays int
	interval   time.Duration
	logger     *slog.Logger
	stopChan   chan struct{}
}

// NewAlertScheduler creates a scheduler that evaluates thresholds over
// windowDays every interval.
func NewAlertScheduler(engine *alerting.Engine, windowDays int, interval time.Duration, logger *slog.Logger) *AlertScheduler {
	return &AlertScheduler{
		engine:     engine,
		windowDays: windowDays,
		interval:   interval,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the scheduler loop. It blocks until Stop is called or
// the context is cancelled.
func (s *AlertScheduler) Start(ctx context.Context) {
	s.logger.Info("starting alert scheduler",
		"interval", s.interval,
		"window_days", s.windowDays,
	)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run once immediately on start
	s.evaluate(ctx)

	for {
		select {
		case <-ticker.C:
			s.evaluate(ctx)
		case <-s.stopChan:
			s.logger.Info("alert scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("alert scheduler stopping due to context cancellation")
			return
		}
	}
}

// Stop stops the scheduler.
func (s *AlertScheduler) Stop() {
	close(s.stopChan)
}

func (s *AlertScheduler) evaluate(ctx context.Context) {
	start := time.Now()

	alerts, err := s.engine.EvaluateThresholds(ctx, s.windowDays)
	if err != nil {
		s.logger.Error("scheduled threshold evaluation failed", "error", err)
		return
	}

	if len(alerts) > 0 {
		s.logger.Info("scheduled threshold evaluation raised alerts",
			"alerts", len(alerts),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
