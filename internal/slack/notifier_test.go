package slack_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clintrovert/sonar-notify/internal/gateway"
	"github.com/clintrovert/sonar-notify/internal/slack"
	"github.com/clintrovert/sonar-notify/pkg/types"
)

var testPR = types.PullRequest{
	URL:   "https://github.com/acme/shop/pull/42",
	Title: "Add checkout",
}

func testOptions(webhook string) slack.Options {
	return slack.Options{
		WebhookURL: webhook,
		Channel:    "#quality",
		Mention:    "<!here>",
		ServerURL:  "https://sonar.example.com",
		ProjectKey: "shop",
	}
}

func TestBuildText_NoIssues(t *testing.T) {
	n := slack.NewNotifier(nil, testOptions(""), zap.NewNop())

	text := n.BuildText(testPR, []types.Issue{})

	assert.Equal(t,
		"<!here> 0 open issues found after scanning <https://github.com/acme/shop/pull/42|PR> with title `Add checkout`",
		text,
	)
	assert.Contains(t, text, "0 open issues")
}

func TestBuildText_ListsIssuesInOrder(t *testing.T) {
	n := slack.NewNotifier(nil, testOptions(""), zap.NewNop())

	text := n.BuildText(testPR, []types.Issue{
		{Key: "K1", Message: "M1"},
		{Key: "K2", Message: "M2"},
	})

	expected := "<!here> 2 open issues found after scanning <https://github.com/acme/shop/pull/42|PR> with title `Add checkout`" +
		"\n>*New Issues*\n" +
		"> - M1 <https://sonar.example.com/project/issues?open=K1&id=shop|open> \n" +
		"> - M2 <https://sonar.example.com/project/issues?open=K2&id=shop|open> \n"
	assert.Equal(t, expected, text)

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[2], "open=K1&id=shop|open> "))
	assert.True(t, strings.HasSuffix(lines[3], "open=K2&id=shop|open> "))
}

func TestNotify_PostsPayload(t *testing.T) {
	var received slack.Payload
	r := chi.NewRouter()
	r.Post("/services/T000/B000/XXX", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte("ok"))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	gw := gateway.New(time.Second, zap.NewNop())
	n := slack.NewNotifier(gw, testOptions(srv.URL+"/services/T000/B000/XXX"), zap.NewNop())

	result := n.Notify(context.Background(), testPR, []types.Issue{{Key: "K1", Message: "M1"}})

	assert.True(t, result.Delivered)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "#quality", received.Channel)
	assert.Equal(t, "Sonarqube DEV", received.Username)
	assert.Equal(t, "https://artifacthub.io/image/949a653d-9573-4e6f-8a20-443126e55656@3x", received.IconURL)
	assert.Contains(t, received.Text, "1 open issues")
	assert.Contains(t, received.Text, "<https://sonar.example.com/project/issues?open=K1&id=shop|open>")
}

func TestNotify_NonSuccessStatusStillCountsAsDelivered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	gw := gateway.New(time.Second, zap.NewNop())
	n := slack.NewNotifier(gw, testOptions(srv.URL), zap.NewNop())

	result := n.Notify(context.Background(), testPR, nil)

	assert.True(t, result.Delivered)
	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
}

type failingPoster struct{}

func (failingPoster) Post(ctx context.Context, url string, body any) (int, error) {
	return 0, errors.New("connection refused")
}

func TestNotify_DeliveryFailure(t *testing.T) {
	n := slack.NewNotifier(failingPoster{}, testOptions("http://127.0.0.1:1"), zap.NewNop())

	result := n.Notify(context.Background(), testPR, nil)

	assert.False(t, result.Delivered)
	assert.Equal(t, "connection refused", result.Reason)
}

func TestBuildPayload_OmitsUnsetChannel(t *testing.T) {
	opts := testOptions("")
	opts.Channel = ""
	n := slack.NewNotifier(nil, opts, zap.NewNop())

	body, err := json.Marshal(n.BuildPayload(testPR, nil))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(body, &fields))
	assert.NotContains(t, fields, "channel")
	assert.Equal(t, "Sonarqube DEV", fields["username"])
}
