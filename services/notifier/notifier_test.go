package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"sjsage522/rafflemonitor/config"
	"sjsage522/rafflemonitor/logger"
	"sjsage522/rafflemonitor/pkg/errors"
)

var (
	_ Notifier = (*WebhookNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
)

func TestWebhookNotifierNotify(t *testing.T) {
	var received Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, 1, 5*time.Second)
	n.rateLimiter = rate.NewLimiter(rate.Inf, 1)

	msg := BuildMessage(testItem())
	require.NoError(t, n.Notify(context.Background(), msg))

	if diff := cmp.Diff(msg, received); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestWebhookNotifierRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid_blocks"))
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, 1, 5*time.Second)
	n.rateLimiter = rate.NewLimiter(rate.Inf, 1)

	err := n.Notify(context.Background(), BuildMessage(testItem()))
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeNotify, errors.TypeOf(err))
	assert.Equal(t, http.StatusBadRequest, errors.StatusCode(err))
	assert.Contains(t, err.Error(), "invalid_blocks")
}

func TestWebhookNotifierUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	n := NewWebhookNotifier(url, 1, time.Second)
	n.rateLimiter = rate.NewLimiter(rate.Inf, 1)

	err := n.Notify(context.Background(), BuildMessage(testItem()))
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeNotify, errors.TypeOf(err))
}

func TestWebhookNotifierRateLimited(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, 0.001, 5*time.Second)

	require.NoError(t, n.Notify(context.Background(), BuildMessage(testItem())))

	// the single token is spent, the next wait would far exceed the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := n.Notify(ctx, BuildMessage(testItem()))
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeNotify, errors.TypeOf(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier()
	n.log = logger.New(zerolog.New(&buf))

	require.NoError(t, n.Notify(context.Background(), BuildMessage(testItem())))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Notification", entry["message"])
	payload := entry["payload"].(map[string]any)
	assert.Equal(t, "Raffle Monitor", payload["text"])
}

func TestNewSelectsNotifier(t *testing.T) {
	assert.IsType(t, &LogNotifier{}, New(&config.Config{}))
	assert.IsType(t, &WebhookNotifier{}, New(&config.Config{
		WebhookURL:      "https://hooks.slack.com/services/T000/B000/XXXX",
		NotifyPerSecond: 1,
		FetchTimeout:    time.Second,
	}))
}
