package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNotFoundIsTerminal(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var out map[string]any
	err := NewClient(nil).GetJSON(context.Background(), srv.URL, 3, &out)
	require.Error(t, err)
	require.True(t, IsNotFound(err))
	require.EqualValues(t, 1, atomic.LoadInt32(&attempts))
}

func TestClientErrorIsTerminal(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	var out map[string]any
	err := NewClient(nil).GetJSON(context.Background(), srv.URL, 3, &out)
	require.Error(t, err)
	require.False(t, IsNotFound(err))
	require.EqualValues(t, 1, atomic.LoadInt32(&attempts))
}

func TestServerErrorIsRetried(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := NewClient(nil).GetJSON(context.Background(), srv.URL, 1, &out)
	require.NoError(t, err)
	require.True(t, out.OK)
	require.EqualValues(t, 2, atomic.LoadInt32(&attempts))
}

func TestAttemptTimeoutFollowsInjectedClient(t *testing.T) {
	require.Equal(t, 42*time.Second, NewClient(&http.Client{Timeout: 42 * time.Second}).timeout)
	require.Equal(t, RequestTimeout, NewClient(&http.Client{}).timeout)
	require.Equal(t, RequestTimeout, NewClient(nil).timeout)
}

func TestRetryTaxonomy(t *testing.T) {
	require.False(t, retryable(&UpstreamError{Status: http.StatusBadRequest}))
	require.False(t, retryable(&UpstreamError{Status: http.StatusTeapot}))
	require.True(t, retryable(&UpstreamError{Status: http.StatusInternalServerError}))
	require.True(t, retryable(&UpstreamError{Err: context.DeadlineExceeded}))
	require.True(t, retryable(&TransportError{Err: context.DeadlineExceeded}))
}
