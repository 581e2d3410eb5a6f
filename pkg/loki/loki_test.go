package loki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type noopLogger struct{}

func (l noopLogger) Error(msg string, args ...any) {}

func Test_Pusher_RequiresUrl(t *testing.T) {
	_, err := New(context.Background(), Config{}, noopLogger{})
	assert.Error(t, err)
}

func Test_Pusher_FlushesBatchOnStop(t *testing.T) {

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	pusher, err := New(context.Background(), Config{
		Url:          server.URL,
		BatchMaxSize: 100,
		BatchMaxWait: time.Minute,
	}, noopLogger{})
	assert.NoError(t, err)

	assert.NoError(t, pusher.Push(LogEntry{Level: "info", Message: "test"}))
	time.Sleep(50 * time.Millisecond)
	pusher.Stop()

	assert.Equal(t, int32(1), requests.Load())
}
