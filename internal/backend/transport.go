package backend

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// retryTransport retries replayable requests that failed at the transport
// level. Responses with an error status are returned as-is.
type retryTransport struct {
	base http.RoundTripper

	// max is the number of retries after the first attempt
	max int

	// backoff is the first wait; later waits grow exponentially
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}

	// Only GET/HEAD without a body can be replayed safely
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	tries := uint(1)
	if canRetry && t.max > 0 {
		tries += uint(t.max)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.backoff
	b.MaxInterval = 4 * t.backoff

	ctx := req.Context()
	return backoff.Retry(ctx, func() (*http.Response, error) {
		resp, err := t.base.RoundTrip(req.Clone(ctx))
		if err != nil && (!canRetry || ctx.Err() != nil) {
			return nil, backoff.Permanent(err)
		}
		return resp, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(tries))
}
