package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"datacli/internal/config"
)

func TestNewTracerProvider(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.TracingConfig
		wantErr   bool
		wantSpans bool
	}{
		{name: "none", cfg: config.TracingConfig{Exporter: "none", SampleRatio: 1}},
		{name: "empty exporter", cfg: config.TracingConfig{}},
		{name: "stdout", cfg: config.TracingConfig{Exporter: "stdout", SampleRatio: 1}, wantSpans: true},
		{name: "stdout never sampled", cfg: config.TracingConfig{Exporter: "stdout", SampleRatio: 0}},
		{name: "unknown exporter", cfg: config.TracingConfig{Exporter: "otlp"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tp, shutdown, err := NewTracerProvider(tt.cfg, &buf)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, tp)
				return
			}
			require.NoError(t, err)

			ctx, span := tp.Tracer(TracerName).Start(context.Background(), "datacli.run")
			traceID := TraceIDFromSpan(ctx)
			span.End()
			require.NoError(t, shutdown(context.Background()))

			if !tt.wantSpans {
				assert.Empty(t, buf.String())
				return
			}

			assert.NotEmpty(t, traceID)
			var exported struct {
				Name        string
				SpanContext struct{ TraceID string }
				Resource    []struct {
					Key   string
					Value struct{ Value interface{} }
				}
			}
			require.NoError(t, json.NewDecoder(&buf).Decode(&exported))
			assert.Equal(t, "datacli.run", exported.Name)
			assert.Equal(t, traceID, exported.SpanContext.TraceID)

			resource := map[string]interface{}{}
			for _, kv := range exported.Resource {
				resource[kv.Key] = kv.Value.Value
			}
			assert.Equal(t, config.AppName, resource["service.name"])
			assert.Equal(t, config.AppVersion, resource["service.version"])
		})
	}
}

func TestTraceIDFromSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromSpan(context.Background()))

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01, 0x02},
		SpanID:  trace.SpanID{0x03},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	assert.Equal(t, sc.TraceID().String(), TraceIDFromSpan(ctx))
}
