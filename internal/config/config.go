package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/magiconair/properties"
)

// Error is returned when the configuration cannot be assembled
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "invalid configuration: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config is built once at startup and passed by value afterwards
type Config struct {
	Token      string `env:"SONAR_TOKEN,required"`
	ReportFile string `env:"SONAR_REPORT_FILE" envDefault:".scannerwork/report-task.txt"`

	WebhookURL string `env:"SLACK_WEBHOOK,required"`
	Mention    string `env:"SLACK_MENTION"`
	Channel    string `env:"SLACK_CHANNEL"`

	PullRequestURL   string `env:"PULL_REQUEST_URL"`
	PullRequestTitle string `env:"PULL_REQUEST_TITLE"`
	GitHubToken      string `env:"GITHUB_TOKEN"`
	GitHubAPIURL     string `env:"GITHUB_API_URL"`

	PollInterval    time.Duration `env:"POLL_INTERVAL" envDefault:"15s"`
	PollMaxAttempts int           `env:"POLL_MAX_ATTEMPTS" envDefault:"0"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`

	// Read from the scanner report file
	ProjectKey    string
	ServerURL     string
	TaskStatusURL string
}

// Load reads the environment and then the scanner report file it points to
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, &Error{Err: err}
	}

	if cfg.PollInterval <= 0 {
		return Config{}, &Error{Err: fmt.Errorf("POLL_INTERVAL must be positive, got %s", cfg.PollInterval)}
	}
	if cfg.PollMaxAttempts < 0 {
		return Config{}, &Error{Err: fmt.Errorf("POLL_MAX_ATTEMPTS must not be negative, got %d", cfg.PollMaxAttempts)}
	}

	report, err := LoadReport(cfg.ReportFile)
	if err != nil {
		return Config{}, &Error{Err: err}
	}

	cfg.ProjectKey = report.ProjectKey
	cfg.ServerURL = report.ServerURL
	cfg.TaskStatusURL = report.TaskStatusURL

	return cfg, nil
}

// Report holds the keys of report-task.txt used by the workflow
type Report struct {
	ProjectKey    string
	ServerURL     string
	TaskStatusURL string
}

// LoadReport reads the properties file written by the scanner. A missing
// ceTaskUrl is not an error; the caller decides what to do without a task.
func LoadReport(path string) (Report, error) {
	loader := &properties.Loader{
		Encoding:         properties.UTF8,
		DisableExpansion: true,
	}

	p, err := loader.LoadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read report file: %w", err)
	}

	report := Report{
		ProjectKey:    strings.TrimSpace(p.GetString("projectKey", "")),
		ServerURL:     strings.TrimSpace(p.GetString("serverUrl", "")),
		TaskStatusURL: strings.TrimSpace(p.GetString("ceTaskUrl", "")),
	}

	if report.TaskStatusURL != "" {
		var missing []string
		if report.ProjectKey == "" {
			missing = append(missing, "projectKey")
		}
		if report.ServerURL == "" {
			missing = append(missing, "serverUrl")
		}
		if len(missing) > 0 {
			return Report{}, errors.New("report file is missing " + strings.Join(missing, ", "))
		}
	}

	return report, nil
}
