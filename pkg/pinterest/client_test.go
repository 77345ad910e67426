package pinterest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "boardharvest/pkg/errors"
	"boardharvest/pkg/logger"
	"boardharvest/pkg/ratelimit"
	"boardharvest/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSendsSessionAndReferer(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte("\x89PNG...."))
	}))
	defer server.Close()

	c := NewClient(5*time.Second, logger.NewTestLogger())
	c.SetSession("abc123")
	c.SetUserAgent("test-agent/1.0")
	c.SetBaseURL("https://example.test")

	data, err := c.Fetch(context.Background(), server.URL+"/originals/a.png")
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG....", string(data))

	require.NotNil(t, got)
	assert.Equal(t, "test-agent/1.0", got.Header.Get("User-Agent"))
	assert.Equal(t, "https://example.test/", got.Header.Get("Referer"))
	assert.Contains(t, got.Header.Get("Accept"), "image/")

	cookie, err := got.Cookie(SessionCookieName)
	require.NoError(t, err)
	assert.Equal(t, "abc123", cookie.Value)
}

func TestFetchWithoutSessionSendsNoCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie(SessionCookieName)
		assert.ErrorIs(t, err, http.ErrNoCookie)
	}))
	defer server.Close()

	_, err := NewClient(0, logger.NewNopLogger()).Fetch(context.Background(), server.URL)
	assert.NoError(t, err)
}

func TestFetchStatusErrors(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusForbidden, http.StatusTooManyRequests, http.StatusBadGateway} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
			}))
			defer server.Close()

			data, err := NewClient(0, logger.NewNopLogger()).Fetch(context.Background(), server.URL)
			assert.Nil(t, data)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrorTypeHTTPStatus, apperrors.TypeOf(err))

			var e *apperrors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, code, e.Code)
		})
	}
}

func TestFetchNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(time.Second, logger.NewNopLogger()).Fetch(context.Background(), url)
	assert.Equal(t, apperrors.ErrorTypeNetwork, apperrors.TypeOf(err))
}

func TestFetchPageAcceptsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept"), "text/html")
		w.Write([]byte("<html><title>Cats</title></html>"))
	}))
	defer server.Close()

	page, err := NewClient(0, logger.NewNopLogger()).FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Cats")
}

func TestFetchPageRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	c := NewClient(0, logger.NewNopLogger())
	c.SetPageRetry(retry.Policy{MaxAttempts: 3, Backoff: retry.ConstantBackoff(time.Millisecond)})

	_, err := c.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFetchDoesNotRetryImages(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewClient(0, logger.NewNopLogger()).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetchHonoursLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	c := NewClient(0, logger.NewNopLogger())
	c.SetLimiter(ratelimit.NewTokenBucket(1, time.Hour))

	_, err := c.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Fetch(ctx, server.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
