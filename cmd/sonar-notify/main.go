package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clintrovert/sonar-notify/internal/config"
	"github.com/clintrovert/sonar-notify/internal/gateway"
	"github.com/clintrovert/sonar-notify/internal/github"
	"github.com/clintrovert/sonar-notify/internal/pipeline"
	"github.com/clintrovert/sonar-notify/internal/slack"
	"github.com/clintrovert/sonar-notify/internal/sonar"
	"github.com/clintrovert/sonar-notify/pkg/types"
)

func main() {
	cfg, cfgErr := config.Load()

	// Initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}

	code := execute(cfg, cfgErr, logger)

	logger.Sync()
	os.Exit(code)
}

// execute maps the configuration result and the run onto a process exit code
func execute(cfg config.Config, cfgErr error, logger *zap.Logger) int {
	if cfgErr != nil {
		logger.Error("failed to load configuration", zap.Error(cfgErr))
		return 1
	}
	return run(cfg, logger)
}

func run(cfg config.Config, logger *zap.Logger) int {
	logger.Info("starting sonarqube post action",
		zap.String("project_key", cfg.ProjectKey),
		zap.String("server_url", cfg.ServerURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw := gateway.New(cfg.HTTPTimeout, logger)

	sonarClient := sonar.NewClient(gw, cfg.ServerURL, cfg.Token, cfg.ProjectKey, logger)
	poller := sonar.NewPoller(sonarClient, cfg.PollInterval, cfg.PollMaxAttempts, logger)

	notifier := slack.NewNotifier(gw, slack.Options{
		WebhookURL: cfg.WebhookURL,
		Channel:    cfg.Channel,
		Mention:    cfg.Mention,
		ServerURL:  cfg.ServerURL,
		ProjectKey: cfg.ProjectKey,
	}, logger)

	pr := pullRequest(cfg, logger)

	// Title lookup is optional and only wired when a GitHub token is present
	var titles pipeline.TitleResolver
	if cfg.GitHubToken != "" {
		ghClient := github.NewClient(cfg.GitHubToken, logger)
		if cfg.GitHubAPIURL != "" {
			if err := ghClient.SetBaseURL(cfg.GitHubAPIURL); err != nil {
				logger.Warn("invalid github api url, using default", zap.Error(err))
			}
		}
		titles = ghClient
	}

	orchestrator := pipeline.NewOrchestrator(cfg.TaskStatusURL, pr, poller, sonarClient, notifier, titles, logger)

	outcome, err := orchestrator.Run(ctx)
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		return 1
	}

	logger.Info("run complete", zap.String("outcome", string(outcome)))
	return 0
}

func pullRequest(cfg config.Config, logger *zap.Logger) types.PullRequest {
	pr := types.PullRequest{URL: cfg.PullRequestURL}
	if cfg.PullRequestURL != "" {
		parsed, err := github.ParsePullRequestURL(cfg.PullRequestURL)
		if err != nil {
			logger.Debug("pull request url not recognised", zap.Error(err))
		} else {
			pr = parsed
		}
	}
	pr.Title = cfg.PullRequestTitle
	return pr
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()

	lvl, levelErr := zapcore.ParseLevel(level)
	if levelErr != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	if levelErr != nil {
		logger.Warn("invalid log level, using info", zap.String("level", level))
	}
	return logger, nil
}
