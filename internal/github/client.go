package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/clintrovert/sonar-notify/pkg/types"
)

// Client wraps the GitHub API calls used to describe a pull request
type Client struct {
	apiClient *github.Client
	logger    *zap.Logger
}

// NewClient creates a new GitHub client
func NewClient(accessToken string, logger *zap.Logger) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: accessToken},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		apiClient: github.NewClient(tc),
		logger:    logger,
	}
}

// SetBaseURL points the client at another API root, e.g. GitHub Enterprise
func (c *Client) SetBaseURL(baseURL string) error {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse base url: %w", err)
	}
	c.apiClient.BaseURL = u
	return nil
}

// PullRequestTitle looks up the current title of pr
func (c *Client) PullRequestTitle(ctx context.Context, pr types.PullRequest) (string, error) {
	got, _, err := c.apiClient.PullRequests.Get(ctx, pr.Owner, pr.Repo, pr.Number)
	if err != nil {
		return "", fmt.Errorf("failed to get pull request: %w", err)
	}

	c.logger.Info("resolved pull request title",
		zap.String("owner", pr.Owner),
		zap.String("repo", pr.Repo),
		zap.Int("pr_number", pr.Number),
	)

	return got.GetTitle(), nil
}
