package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	breakerName = "recommendation-backend"

	// Consecutive failures before the circuit opens
	breakerTripAfter = 5

	// How long the circuit stays open before a probe is allowed
	breakerOpenTimeout = 30 * time.Second
)

// newBreaker builds the circuit breaker guarding backend calls.
// Client errors (4xx) are answers, not outages, so they count as success.
func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripAfter
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			code := domain.StatusCode(err)
			return code >= http.StatusBadRequest && code < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", stateString(from), "to", stateString(to))
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateString(from), stateString(to)).Inc()
		},
	})
}

// isRejected reports whether err came from the breaker refusing the call
func isRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// rejectedError wraps a breaker refusal so callers see an unreachable backend
func rejectedError(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrBackendUnreachable, err)
}

func stateFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
