package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/rafflemonitor/pkg/errors"
)

func TestNewIdentity(t *testing.T) {
	identity := NewIdentity()
	assert.NotEmpty(t, identity.UserAgent)
}

func TestFetchUsesFixedIdentity(t *testing.T) {
	var mu sync.Mutex
	var agents []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.Header.Get("User-Agent"))
		mu.Unlock()

		assert.Empty(t, r.Header.Get("Cookie"))
		assert.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "<html><body>Hello, World!</body></html>")
	}))
	defer server.Close()

	f := New(nil, Identity{UserAgent: "test-agent/1.0"}, 5*time.Second)

	for i := 0; i < 3; i++ {
		doc, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, doc.StatusCode)
		assert.Equal(t, server.URL, doc.URL)
		assert.Contains(t, string(doc.Body), "Hello, World!")
	}

	assert.Equal(t, []string{"test-agent/1.0", "test-agent/1.0", "test-agent/1.0"}, agents)
	assert.Equal(t, "test-agent/1.0", f.Identity().UserAgent)
}

func TestFetchNonUTF8(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1252")
		w.WriteHeader(http.StatusOK)
		// 0x80 is the euro sign in windows-1252
		w.Write([]byte("<html><body><span>\x80199.99</span></body></html>"))
	}))
	defer server.Close()

	f := New(nil, Identity{UserAgent: "test-agent/1.0"}, 5*time.Second)
	doc, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	body, err := io.ReadAll(doc.Reader())
	require.NoError(t, err)
	assert.Contains(t, string(body), "€199.99")
}

func TestFetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := New(nil, Identity{UserAgent: "test-agent/1.0"}, 5*time.Second)
	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 500")
	assert.Equal(t, errors.ErrorTypeStatus, errors.TypeOf(err))
	assert.Equal(t, http.StatusInternalServerError, errors.StatusCode(err))
}

func TestFetchNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	f := New(nil, Identity{UserAgent: "test-agent/1.0"}, 2*time.Second)
	_, err := f.Fetch(context.Background(), url)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeNetwork, errors.TypeOf(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestFetchCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(nil, Identity{UserAgent: "test-agent/1.0"}, 2*time.Second)
	_, err := f.Fetch(ctx, server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
