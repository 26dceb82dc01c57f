package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resilient "github.com/DaiyamondoSei/astral-venture-sub006"
	"github.com/DaiyamondoSei/astral-venture-sub006/httpx"
)

func TestTransportSendSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/items/42", r.URL.Path)
		assert.Equal(t, "abc123", r.Header.Get("X-Session"))

		w.Header().Set("X-Trace", "t1")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":42}`))
	}))
	defer srv.Close()

	transport := httpx.NewTransport(srv.URL, nil)

	resp, err := transport.Send(context.Background(), resilient.RequestSpec{
		Method:   http.MethodGet,
		Endpoint: "/items/42",
		Header:   map[string]string{"X-Session": "abc123"},
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"id":42}`, string(resp.Body))
	assert.Equal(t, "t1", resp.Header["X-Trace"])
}

func TestTransportSetsJSONContentTypeForBodies(t *testing.T) {
	t.Parallel()

	var contentType atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType.Store(r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	transport := httpx.NewTransport(srv.URL, nil)

	_, err := transport.Send(context.Background(), resilient.RequestSpec{
		Method:   http.MethodPost,
		Endpoint: "/reflections",
		Body:     []byte(`{"mood":"calm"}`),
	})

	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType.Load())
}

func TestTransportReturnsNonSuccessStatusesAsResponses(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	transport := httpx.NewTransport(srv.URL, nil)

	resp, err := transport.Send(context.Background(), resilient.RequestSpec{
		Method:   http.MethodGet,
		Endpoint: "/anything",
	})

	require.NoError(t, err, "status handling belongs to the executor, not the transport")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestTransportHonoursCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	transport := httpx.NewTransport(srv.URL, nil)

	_, err := transport.Send(ctx, resilient.RequestSpec{
		Method:   http.MethodGet,
		Endpoint: "/slow",
	})

	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// End-to-end through the resilient client
// ---------------------------------------------------------------------------

func TestClientRetriesServerErrorsEndToEnd(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"energy":42}`))
	}))
	defer srv.Close()

	client := httpx.NewClient("", srv.URL, nil)

	resp, err := client.Run(context.Background(), resilient.RequestSpec{
		Method:   http.MethodGet,
		Endpoint: "/energy/current",
	}, resilient.RetryPolicy{
		MaxAttempts:    4,
		BaseDelay:      time.Millisecond,
		AttemptTimeout: 2 * time.Second,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"energy":42}`, string(resp.Body))
	assert.Equal(t, int64(3), calls.Load())
}

func TestClientClassifiesValidationEndToEnd(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":{"intention":"must not be empty"}}`))
	}))
	defer srv.Close()

	_, err := resilient.Do(context.Background(),
		httpx.NewTransport(srv.URL, nil),
		resilient.RequestSpec{
			Method:   http.MethodPost,
			Endpoint: "/intentions",
			Body:     []byte(`{}`),
		},
		resilient.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond},
	)

	var ce *resilient.ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, resilient.KindValidation, ce.Kind)
	assert.False(t, ce.Retryable)
	assert.Equal(t, 400, ce.StatusCode)
}

func TestClientClassifiesConnectionFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing is listening any more

	_, err := resilient.Do(context.Background(),
		httpx.NewTransport(srv.URL, nil),
		resilient.RequestSpec{Method: http.MethodGet, Endpoint: "/"},
		resilient.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond},
	)

	var ce *resilient.ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, resilient.KindNetwork, ce.Kind)
	assert.True(t, ce.Retryable)
}
