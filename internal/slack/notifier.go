package slack

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/clintrovert/sonar-notify/internal/sonar"
	"github.com/clintrovert/sonar-notify/pkg/types"
)

const (
	username = "Sonarqube DEV"
	iconURL  = "https://artifacthub.io/image/949a653d-9573-4e6f-8a20-443126e55656@3x"
)

// Poster delivers a JSON payload
type Poster interface {
	Post(ctx context.Context, url string, body any) (int, error)
}

// Options configures where and how the summary is posted
type Options struct {
	WebhookURL string
	Channel    string
	Mention    string
	ServerURL  string
	ProjectKey string
}

// Payload is the incoming webhook message
type Payload struct {
	Text     string `json:"text"`
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username"`
	IconURL  string `json:"icon_url"`
}

// Notifier posts the issue summary to an incoming webhook
type Notifier struct {
	poster Poster
	opts   Options
	logger *zap.Logger
}

// NewNotifier creates a new Slack notifier
func NewNotifier(poster Poster, opts Options, logger *zap.Logger) *Notifier {
	return &Notifier{
		poster: poster,
		opts:   opts,
		logger: logger,
	}
}

// Notify posts the summary. Delivery is attempted once; a failure is logged
// and reported in the result.
func (n *Notifier) Notify(ctx context.Context, pr types.PullRequest, issues []types.Issue) types.NotificationResult {
	payload := n.BuildPayload(pr, issues)

	status, err := n.poster.Post(ctx, n.opts.WebhookURL, payload)
	if err != nil {
		n.logger.Error("failed to send slack message", zap.Error(err))
		return types.NotificationResult{Reason: err.Error()}
	}

	n.logger.Info("sent slack message",
		zap.String("channel", n.opts.Channel),
		zap.Int("issues", len(issues)),
		zap.Int("status", status),
	)

	return types.NotificationResult{Delivered: true, StatusCode: status}
}

// BuildPayload renders the webhook message for issues
func (n *Notifier) BuildPayload(pr types.PullRequest, issues []types.Issue) Payload {
	return Payload{
		Text:     n.BuildText(pr, issues),
		Channel:  n.opts.Channel,
		Username: username,
		IconURL:  iconURL,
	}
}

// BuildText renders the message body, listing issues in the given order
func (n *Notifier) BuildText(pr types.PullRequest, issues []types.Issue) string {
	var sb strings.Builder

	sb.WriteString(n.opts.Mention)
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(len(issues)))
	sb.WriteString(" open issues found after scanning <")
	sb.WriteString(pr.URL)
	sb.WriteString("|PR> with title `")
	sb.WriteString(pr.Title)
	sb.WriteString("`")

	if len(issues) > 0 {
		sb.WriteString("\n>*New Issues*\n")
		for _, issue := range issues {
			sb.WriteString("> - ")
			sb.WriteString(issue.Message)
			sb.WriteString(" <")
			sb.WriteString(sonar.IssueURL(n.opts.ServerURL, n.opts.ProjectKey, issue.Key))
			sb.WriteString("|open> \n")
		}
	}

	return sb.String()
}
