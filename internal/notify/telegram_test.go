package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBotApiStub(t *testing.T, getMeCalls, sendCalls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			getMeCalls.Add(1)
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"digest","username":"digest_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			sendCalls.Add(1)
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
		default:
			t.Errorf("unexpected bot api call: %s", r.URL.Path)
		}
	}))
}

func Test_TelegramChannel_Validate(t *testing.T) {

	assert.NoError(t, NewTelegramChannel(TelegramConfig{Token: "token", ChatID: 1}).Validate())
	assert.ErrorIs(t, NewTelegramChannel(TelegramConfig{ChatID: 1}).Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, NewTelegramChannel(TelegramConfig{Token: "token"}).Validate(), ErrInvalidConfig)
}

func Test_TelegramChannel_Send_ShouldAuthorizeOnceAcrossConcurrentSends(t *testing.T) {

	var getMeCalls, sendCalls atomic.Int32
	server := newBotApiStub(t, &getMeCalls, &sendCalls)
	defer server.Close()

	channel := NewTelegramChannel(TelegramConfig{Token: "token", ChatID: 42})
	channel.SetAPIEndpoint(server.URL + "/bot%s/%s")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, channel.Send(context.Background(), testSummary()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), getMeCalls.Load())
	assert.Equal(t, int32(5), sendCalls.Load())
}

func Test_TelegramChannel_Send_WhenAuthorizationFails_ShouldBeTransient(t *testing.T) {

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	defer server.Close()

	channel := NewTelegramChannel(TelegramConfig{Token: "bad-token", ChatID: 42})
	channel.SetAPIEndpoint(server.URL + "/bot%s/%s")

	err := channel.Send(context.Background(), testSummary())
	assert.Error(t, err)
	assert.True(t, IsTransient(err), "authorization failure should allow a retry")
}
