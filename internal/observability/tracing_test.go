package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "recipebox-test", Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "test.span")
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
}

func TestInitTracing_Stdout(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{
		ServiceName:  "recipebox-test",
		Enabled:      true,
		Exporter:     "stdout",
		SamplerRatio: 0.5,
	})
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	_, span := TraceRepositoryMethod(context.Background(), "Search", "recipes")
	assert.True(t, span.SpanContext().IsValid())
	EndSpan(span, nil)
}

func TestTrackQuery(t *testing.T) {
	done := TrackQuery("select", "metrics_test")
	done()
	assert.Equal(t, 1, testutil.CollectAndCount(DatabaseQueryLatency, "recipebox_database_query_latency_seconds"))
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "error", Outcome(errors.New("x")))
}
