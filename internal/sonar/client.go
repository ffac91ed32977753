package sonar

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/clintrovert/sonar-notify/pkg/types"
)

// Fetcher performs authenticated JSON GET requests
type Fetcher interface {
	Get(ctx context.Context, url, token string, out any) error
}

// Client wraps the SonarQube web API calls used by the workflow
type Client struct {
	fetcher    Fetcher
	logger     *zap.Logger
	token      string
	serverURL  string
	projectKey string
}

// NewClient creates a new SonarQube client
func NewClient(fetcher Fetcher, serverURL, token, projectKey string, logger *zap.Logger) *Client {
	return &Client{
		fetcher:    fetcher,
		logger:     logger,
		token:      token,
		serverURL:  strings.TrimSuffix(serverURL, "/"),
		projectKey: projectKey,
	}
}

type taskResponse struct {
	Task *struct {
		Status     string `json:"status"`
		StartedAt  string `json:"startedAt"`
		ExecutedAt string `json:"executedAt"`
	} `json:"task"`
}

type issuesResponse struct {
	Issues *[]struct {
		Key     string `json:"key"`
		Message string `json:"message"`
	} `json:"issues"`
}

// TaskStatus fetches one observation of the compute engine task at taskURL
func (c *Client) TaskStatus(ctx context.Context, taskURL string) (*types.TaskStatus, error) {
	var resp taskResponse
	if err := c.fetcher.Get(ctx, taskURL, c.token, &resp); err != nil {
		return nil, fmt.Errorf("failed to get task status: %w", err)
	}

	if resp.Task == nil {
		return nil, &ParseError{Resource: "task", Field: "task"}
	}

	status := &types.TaskStatus{
		State: types.ParseTaskState(resp.Task.Status),
		Raw:   resp.Task.Status,
	}

	if status.State == types.TaskStateSuccess {
		if resp.Task.StartedAt == "" {
			return nil, &ParseError{Resource: "task", Field: "startedAt"}
		}
		if resp.Task.ExecutedAt == "" {
			return nil, &ParseError{Resource: "task", Field: "executedAt"}
		}
		status.StartedAt = resp.Task.StartedAt
		status.ExecutedAt = resp.Task.ExecutedAt
	}

	return status, nil
}

// SearchOpenIssues retrieves the OPEN issues of the project created inside window,
// in the order the server returns them
func (c *Client) SearchOpenIssues(ctx context.Context, window types.TimeWindow) ([]types.Issue, error) {
	searchURL := c.issuesSearchURL(window)

	var resp issuesResponse
	if err := c.fetcher.Get(ctx, searchURL, c.token, &resp); err != nil {
		return nil, fmt.Errorf("failed to search issues: %w", err)
	}

	if resp.Issues == nil {
		return nil, &ParseError{Resource: "issues", Field: "issues"}
	}

	issues := make([]types.Issue, 0, len(*resp.Issues))
	for _, issue := range *resp.Issues {
		issues = append(issues, types.Issue{
			Key:     issue.Key,
			Message: issue.Message,
		})
	}

	c.logger.Info("fetched open issues",
		zap.String("project_key", c.projectKey),
		zap.Int("count", len(issues)),
	)

	return issues, nil
}

// issuesSearchURL builds the query by hand: the window bounds are already
// percent-encoded and must not be escaped a second time.
func (c *Client) issuesSearchURL(window types.TimeWindow) string {
	var sb strings.Builder
	sb.WriteString(c.serverURL)
	sb.WriteString("/api/issues/search?componentKeys=")
	sb.WriteString(url.QueryEscape(c.projectKey))
	sb.WriteString("&createdAfter=")
	sb.WriteString(window.CreatedAfter())
	sb.WriteString("&createdBefore=")
	sb.WriteString(window.CreatedBefore())
	sb.WriteString("&issueStatuses=OPEN")
	return sb.String()
}

// IssueURL links to a single issue in the SonarQube UI
func IssueURL(serverURL, projectKey, key string) string {
	return strings.TrimSuffix(serverURL, "/") + "/project/issues?open=" + key + "&id=" + projectKey
}
