package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/xrefresh/pkg/observability/xlog"
	"github.com/omeyang/xrefresh/pkg/storage/xrefresh"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(srv *httptest.Server, opts ...Option) *Client {
	opts = append([]Option{WithHTTPClient(srv.Client()), WithLogger(xlog.Discard())}, opts...)
	return New(opts...)
}

func TestFetch_OK(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "schedule-bot/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"week":1}`))
	})
	c := newClient(srv, WithUserAgent("schedule-bot/1.0"))

	doc, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, doc.URL)
	assert.Equal(t, `{"week":1}`, string(doc.Body))
	assert.Equal(t, "application/json", doc.ContentType)
	assert.Equal(t, Digest([]byte(`{"week":1}`)), doc.Digest)
	assert.False(t, doc.FetchedAt.IsZero())
	assert.Equal(t, "closed", c.State())
}

func TestFetch_EmptyURL(t *testing.T) {
	c := New(WithLogger(xlog.Discard()))
	_, err := c.Fetch(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyURL)
}

func TestFetch_StatusError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c := newClient(srv)

	_, err := c.Fetch(context.Background(), srv.URL)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.True(t, se.Temporary())
	assert.Contains(t, se.Error(), "unexpected status 502")
}

func TestFetch_BodyTooLarge(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	})
	c := newClient(srv, WithMaxBodySize(16))

	_, err := c.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestFetch_CircuitOpens(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	c := newClient(srv, WithFailureThreshold(2), WithOpenTimeout(time.Hour), WithName("api"))

	for range 2 {
		_, err := c.Fetch(context.Background(), srv.URL)
		require.Error(t, err)
	}
	assert.Equal(t, "open", c.State())

	_, err := c.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetch_ClientErrorsDoNotTrip(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c := newClient(srv, WithFailureThreshold(1))

	for range 3 {
		_, err := c.Fetch(context.Background(), srv.URL)
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.False(t, se.Temporary())
	}
	assert.Equal(t, "closed", c.State())
}

func TestFetch_CancellationDoesNotTrip(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	c := newClient(srv, WithFailureThreshold(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Fetch(ctx, srv.URL)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "closed", c.State())
}

func TestClient_ProducerWithCache(t *testing.T) {
	var version atomic.Int32
	version.Store(1)
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if version.Load() == 2 {
			_, _ = w.Write([]byte("v2"))
			return
		}
		_, _ = w.Write([]byte("v1"))
	})
	c := newClient(srv)

	clock := clockwork.NewFakeClock()
	cache, err := xrefresh.New(c.Producer(), time.Minute,
		xrefresh.WithClock(clock),
		xrefresh.WithIdleLifetime(xrefresh.Infinite),
		xrefresh.WithLogger(xlog.Discard()),
	)
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	doc, err := cache.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(doc.Body))

	version.Store(2)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)

	require.Eventually(t, func() bool {
		doc, err := cache.Get(context.Background(), srv.URL)
		return err == nil && string(doc.Body) == "v2"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestDigest(t *testing.T) {
	assert.Equal(t, Digest([]byte("a")), Digest([]byte("a")))
	assert.NotEqual(t, Digest([]byte("a")), Digest([]byte("b")))
	assert.NotEmpty(t, Digest(nil))
}

func TestStatusError_Temporary(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{code: 500, want: true},
		{code: 503, want: true},
		{code: 429, want: true},
		{code: 404, want: false},
		{code: 400, want: false},
	}
	for _, tt := range tests {
		err := &StatusError{URL: "http://x", Code: tt.code}
		assert.Equal(t, tt.want, err.Temporary(), tt.code)
		assert.False(t, errors.Is(err, ErrCircuitOpen))
	}
}
