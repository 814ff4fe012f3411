package telemetry

import (
	"context"
	"testing"

	"github.com/Togather-Foundation/gala/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Enabled: false}, "test", "test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_InvalidSampleRate(t *testing.T) {
	_, err := InitTracing(context.Background(), config.TracingConfig{Enabled: true, Exporter: "none", SampleRate: 2}, "test", "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample rate")
}

func TestInitTracing_UnsupportedExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), config.TracingConfig{Enabled: true, Exporter: "zipkin", SampleRate: 1}, "test", "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported exporter")
}

func TestInitTracing_NoneExporterStillSamples(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := InitTracing(context.Background(), config.TracingConfig{
		Enabled:  true,
		Exporter: "none",
	}, "1.0.0", "test")
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "role_lookup")
	assert.False(t, span.SpanContext().IsSampled(), "sample rate 0 drops root spans")
	span.End()

	require.NoError(t, shutdown(context.Background()))
}

func TestNewSampler(t *testing.T) {
	for _, rate := range []float64{0, 0.25, 1} {
		s, err := newSampler(rate)
		require.NoError(t, err)
		assert.Contains(t, s.Description(), "ParentBased")
	}

	_, err := newSampler(-0.1)
	assert.Error(t, err)
}
