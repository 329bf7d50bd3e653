package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openledger/backend/internal/infrastructure/logger"
	"github.com/openledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTenantRouter(cfg TenantMiddlewareConfig, seen *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(TenantMiddlewareWithConfig(cfg))
	handler := func(c *gin.Context) {
		*seen, _ = GetTenantID(c)
		c.Status(http.StatusOK)
	}
	router.GET("/api/v1/accounts", handler)
	router.GET("/api/v1/system/ping", handler)
	return router
}

func TestTenantMiddleware(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantTenant uuid.UUID
	}{
		{"valid header", "/api/v1/accounts", tenantID.String(), http.StatusOK, tenantID},
		{"missing header", "/api/v1/accounts", "", http.StatusUnauthorized, uuid.Nil},
		{"malformed header", "/api/v1/accounts", "acme", http.StatusUnauthorized, uuid.Nil},
		{"nil uuid", "/api/v1/accounts", uuid.Nil.String(), http.StatusUnauthorized, uuid.Nil},
		{"skipped path", "/api/v1/system/ping", "", http.StatusOK, uuid.Nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen uuid.UUID
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(TenantHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			newTenantRouter(DefaultTenantConfig(), &seen).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantTenant, seen)
			if tt.wantStatus == http.StatusUnauthorized {
				var resp dto.Response
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
			}
		})
	}
}

func TestTenantMiddleware_Optional(t *testing.T) {
	var seen uuid.UUID
	router := newTenantRouter(TenantMiddlewareConfig{Required: false}, &seen)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uuid.Nil, seen)
}

func TestTenantMiddleware_ContextPropagation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tenantID := uuid.New()

	var fromContext uuid.UUID
	router := gin.New()
	router.Use(TenantMiddleware())
	router.GET("/api/v1/accounts", func(c *gin.Context) {
		fromContext, _ = logger.TenantID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set(TenantHeaderKey, tenantID.String())
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, tenantID, fromContext)
}

func TestGetTenantID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetTenantID(c)
	assert.False(t, ok)

	c.Set(TenantIDKey, "not-a-uuid-value")
	_, ok = GetTenantID(c)
	assert.False(t, ok)

	tenantID := uuid.New()
	c.Set(TenantIDKey, tenantID)
	got, ok := GetTenantID(c)
	assert.True(t, ok)
	assert.Equal(t, tenantID, got)
}
