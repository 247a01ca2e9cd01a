package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen11/user-lookup-service/internal/platform/config"
)

// breakerName identifies the store in breaker logs.
const breakerName = "user-store"

// Guard runs queries behind a circuit breaker and an optional rate limiter.
// It never retries: a failed query is reported once to the caller.
type Guard struct {
	breaker *gobreaker.CircuitBreaker[struct{}]
	limiter *rate.Limiter // nil when rate limiting is disabled
}

// NewGuard builds a Guard from storage settings. Missing rows and failures
// caused by client-supplied values do not count toward tripping the breaker.
func NewGuard(cfg *config.StorageConfig, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: toUint32(cfg.CircuitBreaker.HalfOpenLimit),
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.CircuitBreaker.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, sql.ErrNoRows) || isClientDataError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	var limiter *rate.Limiter
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.BurstSize)
	}

	return &Guard{breaker: cb, limiter: limiter}
}

// Do runs fn through the breaker, waiting on the limiter first. Breaker
// rejections surface as gobreaker.ErrOpenState or gobreaker.ErrTooManyRequests.
func (g *Guard) Do(ctx context.Context, fn func(context.Context) error) error {
	_, err := g.breaker.Execute(func() (struct{}, error) {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, fn(ctx)
	})
	return err
}

// State reports the breaker state for health reporting.
func (g *Guard) State() gobreaker.State {
	return g.breaker.State()
}

func toUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}
