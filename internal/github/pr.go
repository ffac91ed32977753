package github

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/clintrovert/sonar-notify/pkg/types"
)

// ParsePullRequestURL extracts owner, repository and number from a pull
// request page URL such as https://github.com/owner/repo/pull/42
func ParsePullRequestURL(raw string) (types.PullRequest, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return types.PullRequest{}, fmt.Errorf("failed to parse pull request url: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 || parts[2] != "pull" {
		return types.PullRequest{}, fmt.Errorf("not a pull request url: %s", raw)
	}

	number, err := strconv.Atoi(parts[3])
	if err != nil || number <= 0 {
		return types.PullRequest{}, fmt.Errorf("invalid pull request number in %s", raw)
	}

	return types.PullRequest{
		Owner:  parts[0],
		Repo:   parts[1],
		Number: number,
		URL:    raw,
	}, nil
}
