// Package scheduler runs background jobs on cron specs with seconds precision.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
	timeout time.Duration
}

// New creates a Runner. Jobs receive a context derived from baseCtx that is
// cancelled after timeout (when timeout > 0).
func New(baseCtx context.Context, logger *zap.Logger, timeout time.Duration) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		baseCtx: baseCtx,
		timeout: timeout,
	}
}

// Add registers job under name. An empty spec is a no-op.
func (r *Runner) Add(name, spec string, job func(context.Context) error) error {
	if spec == "" {
		return nil
	}
	_, err := r.cron.AddFunc(spec, func() {
		ctx := r.baseCtx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		start := time.Now()
		if err := job(ctx); err != nil {
			r.logger.Error("job failed", zap.String("job", name), zap.Error(err))
			return
		}
		r.logger.Info("job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	})
	return err
}

func (r *Runner) Start() {
	r.logger.Info("scheduler started", zap.Int("jobs", len(r.cron.Entries())))
	r.cron.Start()
}

// Stop waits for running jobs to return.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info("scheduler stopped")
}
