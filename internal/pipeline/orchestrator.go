package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clintrovert/sonar-notify/internal/sonar"
	"github.com/clintrovert/sonar-notify/pkg/types"
)

// Outcome describes how a run ended
type Outcome string

const (
	OutcomeNoTask         Outcome = "no_task"
	OutcomeTaskFailed     Outcome = "task_failed"
	OutcomeFetchFailed    Outcome = "fetch_failed"
	OutcomeNotified       Outcome = "notified"
	OutcomeDeliveryFailed Outcome = "delivery_failed"
)

// TaskWaiter blocks until a task is terminal
type TaskWaiter interface {
	WaitForCompletion(ctx context.Context, taskURL string) (*types.TaskStatus, error)
}

// IssueSearcher finds the open issues raised inside a window
type IssueSearcher interface {
	SearchOpenIssues(ctx context.Context, window types.TimeWindow) ([]types.Issue, error)
}

// Notifier delivers the summary
type Notifier interface {
	Notify(ctx context.Context, pr types.PullRequest, issues []types.Issue) types.NotificationResult
}

// TitleResolver looks up a pull request title
type TitleResolver interface {
	PullRequestTitle(ctx context.Context, pr types.PullRequest) (string, error)
}

// Orchestrator runs the poll, search and notify steps for one analysis
type Orchestrator struct {
	taskURL     string
	pullRequest types.PullRequest
	waiter      TaskWaiter
	issues      IssueSearcher
	notifier    Notifier
	titles      TitleResolver
	logger      *zap.Logger
}

// NewOrchestrator creates a new orchestrator. titles may be nil, in which case
// the pull request title is used as given.
func NewOrchestrator(
	taskURL string,
	pullRequest types.PullRequest,
	waiter TaskWaiter,
	issues IssueSearcher,
	notifier Notifier,
	titles TitleResolver,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		taskURL:     taskURL,
		pullRequest: pullRequest,
		waiter:      waiter,
		issues:      issues,
		notifier:    notifier,
		titles:      titles,
		logger:      logger,
	}
}

// Run executes the workflow. Only failures that should fail the process are
// returned as errors; search and delivery problems are logged and reported
// through the outcome.
func (o *Orchestrator) Run(ctx context.Context) (Outcome, error) {
	if o.taskURL == "" {
		o.logger.Info("ceTaskUrl not found in report file, nothing to do")
		return OutcomeNoTask, nil
	}

	o.logger.Info("waiting for analysis task", zap.String("task_url", o.taskURL))

	status, err := o.waiter.WaitForCompletion(ctx, o.taskURL)
	if err != nil {
		return "", fmt.Errorf("failed to wait for task: %w", err)
	}

	if status.State == types.TaskStateFailed {
		o.logger.Info("analysis task failed, skipping notification", zap.String("task_url", o.taskURL))
		return OutcomeTaskFailed, nil
	}

	window, err := sonar.ComputeWindow(status.StartedAt, status.ExecutedAt)
	if err != nil {
		return "", fmt.Errorf("failed to compute issue window: %w", err)
	}
	if window.Inverted() {
		o.logger.Warn("issue window is empty or inverted",
			zap.String("created_after", window.CreatedAfter()),
			zap.String("created_before", window.CreatedBefore()),
		)
	}

	issues, err := o.issues.SearchOpenIssues(ctx, window)
	if err != nil {
		o.logger.Error("failed to fetch issues", zap.Error(err))
		return OutcomeFetchFailed, nil
	}

	pr := o.resolvePullRequest(ctx)

	result := o.notifier.Notify(ctx, pr, issues)
	if !result.Delivered {
		o.logger.Error("notification not delivered", zap.String("reason", result.Reason))
		return OutcomeDeliveryFailed, nil
	}

	return OutcomeNotified, nil
}

// resolvePullRequest fills in a missing title when a resolver is available
func (o *Orchestrator) resolvePullRequest(ctx context.Context) types.PullRequest {
	pr := o.pullRequest
	if pr.Title != "" || o.titles == nil || pr.Number == 0 {
		return pr
	}

	title, err := o.titles.PullRequestTitle(ctx, pr)
	if err != nil {
		o.logger.Warn("failed to resolve pull request title", zap.Error(err))
		return pr
	}

	pr.Title = title
	return pr
}
