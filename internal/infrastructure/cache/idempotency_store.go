// Package cache holds the stores that remember Idempotency-Key headers
// between retried ledger writes.
package cache

import (
	"context"
	"time"
)

// IdempotencyStore records which request keys have already been claimed.
type IdempotencyStore interface {
	// Claim reserves key for ttl. It returns false when the key is
	// already held by an earlier request.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release forgets key so that a failed request can be retried.
	Release(ctx context.Context, key string) error
	Close() error
}

const defaultKeyPrefix = "ledger:idempotency:"
