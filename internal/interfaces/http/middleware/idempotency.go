package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openledger/backend/internal/infrastructure/cache"
	"github.com/openledger/backend/internal/infrastructure/logger"
	"github.com/openledger/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Idempotency-Key handling
const (
	IdempotencyKeyHeader    = "Idempotency-Key"
	MaxIdempotencyKeyLength = 255
)

// IdempotencyConfig configures replay protection for ledger writes
type IdempotencyConfig struct {
	Store cache.IdempotencyStore
	TTL   time.Duration
	// Methods the key applies to; defaults to POST and DELETE
	Methods []string
}

// Idempotency rejects a write whose Idempotency-Key was already used by the
// same tenant on the same path within TTL. Requests without the header pass
// through. A claim is released when the request fails, so the client may
// retry with the same key.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	methods := cfg.Methods
	if len(methods) == 0 {
		methods = []string{http.MethodPost, http.MethodDelete}
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" || cfg.Store == nil || !slices.Contains(methods, c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c),
			))
			return
		}

		ctx := c.Request.Context()
		storeKey := idempotencyStoreKey(c, key)
		claimed, err := cfg.Store.Claim(ctx, storeKey, cfg.TTL)
		if err != nil {
			// The store being down must not block bookkeeping
			logger.L(ctx).Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key has already been processed",
				GetRequestID(c),
			))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := cfg.Store.Release(context.WithoutCancel(ctx), storeKey); err != nil {
				logger.L(ctx).Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}

func idempotencyStoreKey(c *gin.Context, key string) string {
	tenant := ""
	if tenantID, ok := GetTenantID(c); ok {
		tenant = tenantID.String()
	}
	return strings.Join([]string{tenant, c.Request.Method, c.Request.URL.Path, key}, ":")
}
