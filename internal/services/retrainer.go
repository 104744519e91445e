package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/studyflow/backend/domain"
)

// RetrainFunc refits the shared estimation model on the current corpus.
type RetrainFunc func(ctx context.Context) error

// RetrainerConfig controls how often the model is refit.
type RetrainerConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Retrainer periodically refits the estimation model so logged outcomes feed
// back into future predictions. The engine itself never schedules training;
// this service owns the cadence.
type Retrainer struct {
	retrain RetrainFunc
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     RetrainerConfig
}

func NewRetrainer(retrain RetrainFunc, logger *zap.Logger, cfg RetrainerConfig) *Retrainer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Retrainer{
		retrain: retrain,
		logger:  logger,
		cfg:     cfg,
	}
	if cfg.Interval <= 0 {
		return r
	}

	r.cron = cron.New(cron.WithSeconds())
	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		r.Run(ctx)
	})
	return r
}

// Start launches the cron scheduler. A zero interval leaves the retrainer
// idle; retraining is then available only through the admin endpoint.
func (r *Retrainer) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("retrainer started", zap.Duration("interval", r.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (r *Retrainer) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("retrainer stopped")
}

// Run performs one retraining pass. An empty corpus is expected before any
// outcomes are logged and is not treated as a failure.
func (r *Retrainer) Run(ctx context.Context) {
	start := time.Now()
	if err := r.retrain(ctx); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeInvalidTraining) {
			r.logger.Debug("skipping retrain (no training data yet)")
			return
		}
		r.logger.Error("periodic retraining failed", zap.Error(err))
		return
	}
	r.logger.Info("model retrained", zap.Duration("took", time.Since(start)))
}
