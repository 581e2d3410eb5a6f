package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_WebhookChannel_Validate(t *testing.T) {

	assert.NoError(t, NewWebhookChannel(WebhookConfig{URL: "https://example.com/hook"}).Validate())

	for _, raw := range []string{"", "example.com/hook", "ftp://example.com", "://broken"} {
		err := NewWebhookChannel(WebhookConfig{URL: raw}).Validate()
		assert.ErrorIs(t, err, ErrInvalidConfig, "url %q", raw)
	}
}

func Test_WebhookChannel_Send_ShouldPostSummaryAsJSON(t *testing.T) {

	var received struct {
		Preference   string        `json:"preference"`
		Repositories []RepoSummary `json:"repositories"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	channel := NewWebhookChannel(WebhookConfig{URL: server.URL})
	err := channel.Send(context.Background(), testSummary())

	assert.NoError(t, err)
	assert.Equal(t, "go tooling", received.Preference)
	assert.Len(t, received.Repositories, 1)
	assert.Equal(t, "spf13/cobra", received.Repositories[0].FullName)
}

func Test_WebhookChannel_Send_ClassifiesFailures(t *testing.T) {

	status := http.StatusInternalServerError
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer server.Close()

	channel := NewWebhookChannel(WebhookConfig{URL: server.URL})

	err := channel.Send(context.Background(), testSummary())
	assert.True(t, IsTransient(err), "5xx should be retryable")

	status = http.StatusForbidden
	err = channel.Send(context.Background(), testSummary())
	assert.Error(t, err)
	assert.False(t, IsTransient(err), "4xx should be permanent")
}

func Test_SlackChannel_Send_ShouldPostMrkdwnText(t *testing.T) {

	var payload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	channel := NewSlackChannel(SlackConfig{WebhookURL: server.URL})
	err := channel.Send(context.Background(), testSummary())

	assert.NoError(t, err)
	assert.Contains(t, payload["text"], "go tooling")
	assert.Contains(t, payload["text"], "spf13/cobra")
	assert.Contains(t, payload["text"], "⭐ 38000 | ")
}
