package sonar

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/clintrovert/sonar-notify/pkg/types"
)

// DefaultPollInterval is the fixed wait between two status checks
const DefaultPollInterval = 15 * time.Second

// TaskSource returns the current status of a task
type TaskSource interface {
	TaskStatus(ctx context.Context, taskURL string) (*types.TaskStatus, error)
}

// Poller waits for a compute engine task to finish
type Poller struct {
	source      TaskSource
	logger      *zap.Logger
	interval    time.Duration
	maxAttempts int
}

// NewPoller creates a new task poller. maxAttempts <= 0 polls until the task
// is terminal, however long that takes.
func NewPoller(source TaskSource, interval time.Duration, maxAttempts int, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		source:      source,
		logger:      logger,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// WaitForCompletion polls taskURL until the task reports SUCCESS or FAILED.
// A FAILED task is returned without error. Fetch and parse errors end polling
// immediately.
func (p *Poller) WaitForCompletion(ctx context.Context, taskURL string) (*types.TaskStatus, error) {
	var b backoff.BackOff = backoff.NewConstantBackOff(p.interval)
	if p.maxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(p.maxAttempts-1))
	}
	b = backoff.WithContext(b, ctx)

	var (
		attempt int
		result  *types.TaskStatus
	)

	operation := func() error {
		attempt++
		status, err := p.source.TaskStatus(ctx, taskURL)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !status.State.Terminal() {
			p.logger.Info("task not finished yet",
				zap.String("task_url", taskURL),
				zap.String("status", status.Raw),
				zap.Int("attempt", attempt),
			)
			return errTaskPending
		}
		result = status
		return nil
	}

	notify := func(err error, wait time.Duration) {
		p.logger.Debug("waiting before next status check", zap.Duration("wait", wait))
	}

	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		if errors.Is(err, errTaskPending) {
			p.logger.Warn("giving up on task",
				zap.String("task_url", taskURL),
				zap.Int("attempts", attempt),
			)
			return nil, ErrPollExhausted
		}
		return nil, err
	}

	p.logger.Info("task finished",
		zap.String("task_url", taskURL),
		zap.String("status", result.Raw),
		zap.Int("attempts", attempt),
	)

	return result, nil
}
