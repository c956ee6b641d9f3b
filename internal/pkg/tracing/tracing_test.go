package tracing_test

import (
	"context"
	"testing"
	"time"

	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/pkg/tracing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_WithoutEndpoint(t *testing.T) {
	shutdown, err := tracing.Setup(context.Background(), config.TracingConfig{ServiceName: "test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_WithEndpoint(t *testing.T) {
	shutdown, err := tracing.Setup(context.Background(), config.TracingConfig{
		Endpoint:    "localhost:4318",
		URLPath:     "/v1/traces",
		Insecure:    true,
		ServiceName: "test",
		Timeout:     time.Second,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// Nothing was exported, so shutdown does not need the collector.
	assert.NoError(t, shutdown(ctx))
}
