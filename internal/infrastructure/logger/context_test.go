package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestWithContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	got := FromContext(ctx)
	assert.Equal(t, logger, got)
}

func TestFromContext_NotFound(t *testing.T) {
	got := FromContext(context.Background())

	// Must return a usable no-op logger
	assert.NotNil(t, got)
	got.Info("should not panic")
}

func TestWithRequestID(t *testing.T) {
	logger := zap.NewNop()
	ctx, enriched := WithRequestID(context.Background(), logger, "req-123")

	assert.NotNil(t, enriched)
	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, enriched, FromContext(ctx))
}

func TestWithOperatorID(t *testing.T) {
	logger := zap.NewNop()
	ctx, enriched := WithOperatorID(context.Background(), logger, "op-7")

	assert.NotNil(t, enriched)
	assert.Equal(t, "op-7", GetOperatorID(ctx))
}

func TestGetRequestID_NotFound(t *testing.T) {
	assert.Equal(t, "", GetRequestID(context.Background()))
}

func TestGetOperatorID_NotFound(t *testing.T) {
	assert.Equal(t, "", GetOperatorID(context.Background()))
}

func TestContextChaining(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	ctx, _ = WithRequestID(ctx, logger, "req-123")
	ctx, _ = WithOperatorID(ctx, FromContext(ctx), "op-7")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, "op-7", GetOperatorID(ctx))
}

func TestFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")

	got := FromContext(ctx)
	assert.NotNil(t, got)
	got.Info("should not panic")
}
