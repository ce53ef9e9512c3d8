package contextkeys

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"appraisal-portal/internal/core/domain"
)

func TestLoggerFromContext_Noop(t *testing.T) {
	logger := LoggerFromContext(context.Background())
	assert.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.WithFields(nil).Error("boom", nil, nil)
	})
}

func TestTraceID(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
	ctx := ContextWithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", TraceIDFromContext(ctx))
}

func TestClaims(t *testing.T) {
	assert.Nil(t, ClaimsFromContext(context.Background()))
	claims := &domain.Claims{UserID: uuid.New(), Role: domain.RoleAdmin}
	ctx := ContextWithClaims(context.Background(), claims)
	assert.Same(t, claims, ClaimsFromContext(ctx))
}
