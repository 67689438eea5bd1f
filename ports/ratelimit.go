package ports

import (
	"context"

	"github.com/intent-app/auth-service/core"
)

// RateLimitStore counts requests per source key within a fixed window.
// A soft, best-effort control: memory-backed instances reset on restart.
type RateLimitStore interface {
	// Hit records one request for key and decides whether it may proceed.
	Hit(ctx context.Context, key string) (core.RateLimitDecision, error)
}
