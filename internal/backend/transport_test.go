package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     make(http.Header),
	}
}

func TestRetryTransport_RetriesTransportErrors(t *testing.T) {
	attempts := 0
	rt := &retryTransport{
		base: roundTripFunc(func(*http.Request) (*http.Response, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("connection reset")
			}
			return okResponse(), nil
		}),
		max:     1,
		backoff: time.Millisecond,
	}

	req, _ := http.NewRequest(http.MethodGet, "http://backend.test/home", nil)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 2, attempts)
}

func TestRetryTransport_GivesUpAfterMax(t *testing.T) {
	attempts := 0
	rt := &retryTransport{
		base: roundTripFunc(func(*http.Request) (*http.Response, error) {
			attempts++
			return nil, errors.New("dial tcp: refused")
		}),
		max:     2,
		backoff: time.Millisecond,
	}

	req, _ := http.NewRequest(http.MethodGet, "http://backend.test/home", nil)
	_, err := rt.RoundTrip(req)
	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryTransport_DoesNotRetryStatusOrPost(t *testing.T) {
	attempts := 0
	rt := &retryTransport{
		base: roundTripFunc(func(*http.Request) (*http.Response, error) {
			attempts++
			if attempts > 1 {
				return nil, errors.New("boom")
			}
			resp := okResponse()
			resp.StatusCode = http.StatusInternalServerError
			return resp, nil
		}),
		max:     3,
		backoff: time.Millisecond,
	}

	req, _ := http.NewRequest(http.MethodGet, "http://backend.test/home", nil)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, 1, attempts)

	attempts = 10
	post, _ := http.NewRequest(http.MethodPost, "http://backend.test/home", strings.NewReader("x"))
	_, err = rt.RoundTrip(post)
	assert.Error(t, err)
	assert.Equal(t, 11, attempts)
}

func TestRetryTransport_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	rt := &retryTransport{
		base: roundTripFunc(func(*http.Request) (*http.Response, error) {
			attempts++
			cancel()
			return nil, errors.New("timeout")
		}),
		max:     5,
		backoff: time.Second,
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://backend.test/home", nil)
	_, err := rt.RoundTrip(req)
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryTransport_WaitsBetweenAttempts(t *testing.T) {
	var stamps []time.Time
	rt := &retryTransport{
		base: roundTripFunc(func(*http.Request) (*http.Response, error) {
			stamps = append(stamps, time.Now())
			if len(stamps) < 3 {
				return nil, errors.New("connection reset")
			}
			return okResponse(), nil
		}),
		max:     2,
		backoff: 20 * time.Millisecond,
	}

	req, _ := http.NewRequest(http.MethodGet, "http://backend.test/home", nil)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Len(t, stamps, 3)
	// Jitter keeps each wait within half the interval either side
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 10*time.Millisecond)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 10*time.Millisecond)
}
