package github_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clintrovert/sonar-notify/internal/github"
	"github.com/clintrovert/sonar-notify/pkg/types"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/repos/{owner}/{repo}/pulls/{number}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gh-token" {
			http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
			return
		}
		if chi.URLParam(r, "number") != "42" {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"number":42,"title":"Add checkout","state":"open"}`))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestPullRequestTitle(t *testing.T) {
	srv := newAPI(t)

	c := github.NewClient("gh-token", zap.NewNop())
	require.NoError(t, c.SetBaseURL(srv.URL))

	title, err := c.PullRequestTitle(context.Background(), types.PullRequest{Owner: "acme", Repo: "shop", Number: 42})
	require.NoError(t, err)
	assert.Equal(t, "Add checkout", title)
}

func TestPullRequestTitle_NotFound(t *testing.T) {
	srv := newAPI(t)

	c := github.NewClient("gh-token", zap.NewNop())
	require.NoError(t, c.SetBaseURL(srv.URL))

	_, err := c.PullRequestTitle(context.Background(), types.PullRequest{Owner: "acme", Repo: "shop", Number: 9})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get pull request")
}
