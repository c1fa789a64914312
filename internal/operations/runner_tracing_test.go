package operations_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"datacli/internal/infrastructure"
	"datacli/internal/operations"
)

func newRecordingRunner(t *testing.T, capture *logCapture) (*operations.Runner, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	runner := operations.NewRunner(capture.logger(t), operations.DefaultOptions(), nil)
	runner.SetTracerProvider(tp)
	return runner, recorder
}

func spansByName(spans []sdktrace.ReadOnlySpan) map[string]sdktrace.ReadOnlySpan {
	out := make(map[string]sdktrace.ReadOnlySpan, len(spans))
	for _, s := range spans {
		out[s.Name()] = s
	}
	return out
}

func attrValue(s sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range s.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestRun_Spans(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		content    string
		write      bool
		wantStages []string
	}{
		{
			name:       "run writes",
			file:       "data.csv",
			content:    "a,b\n1,2\n",
			write:      true,
			wantStages: []string{operations.StageLoad, operations.StageAnalyze, operations.StageWrite},
		},
		{
			name:       "analyze only",
			file:       "notes.txt",
			content:    "x\n",
			wantStages: []string{operations.StageLoad, operations.StageAnalyze},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input := writeFile(t, dir, tt.file, tt.content)
			capture := &logCapture{}
			runner, recorder := newRecordingRunner(t, capture)

			var (
				res *operations.Result
				err error
			)
			if tt.write {
				res, err = runner.Run(context.Background(), input, filepath.Join(dir, "out"))
			} else {
				res, err = runner.Analyze(context.Background(), input)
			}
			require.NoError(t, err)

			spans := spansByName(recorder.Ended())
			require.Len(t, spans, len(tt.wantStages)+1)

			root, ok := spans["datacli.run"]
			require.True(t, ok)
			assert.False(t, root.Parent().IsValid())
			assert.Equal(t, codes.Ok, root.Status().Code)
			gotInput, ok := attrValue(root, "input")
			require.True(t, ok)
			assert.Equal(t, input, gotInput.AsString())
			status, ok := attrValue(root, "status")
			require.True(t, ok)
			assert.Equal(t, string(operations.StatusCompleted), status.AsString())

			for _, stage := range tt.wantStages {
				span, ok := spans["datacli.stage."+stage]
				require.True(t, ok, stage)
				assert.Equal(t, root.SpanContext().SpanID(), span.Parent().SpanID())
				assert.Equal(t, root.SpanContext().TraceID(), span.SpanContext().TraceID())
				assert.Equal(t, codes.Ok, span.Status().Code)
			}

			// logs carry the span trace id
			traceID := root.SpanContext().TraceID().String()
			assert.Equal(t, traceID, res.TraceID)
			for _, e := range capture.entries() {
				assert.Equal(t, traceID, e["trace_id"])
			}
		})
	}
}

func TestRun_SpanRecordsFailure(t *testing.T) {
	dir := t.TempDir()
	capture := &logCapture{}
	runner, recorder := newRecordingRunner(t, capture)

	_, err := runner.Run(context.Background(), filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out"))
	require.Error(t, err)

	spans := spansByName(recorder.Ended())
	require.Len(t, spans, 2)

	load := spans["datacli.stage."+operations.StageLoad]
	require.NotNil(t, load)
	assert.Equal(t, codes.Error, load.Status().Code)
	errType, ok := attrValue(load, "error.type")
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", errType.AsString())
	require.NotEmpty(t, load.Events())
	assert.Equal(t, "exception", load.Events()[0].Name)

	root := spans["datacli.run"]
	require.NotNil(t, root)
	assert.Equal(t, codes.Error, root.Status().Code)
	status, ok := attrValue(root, "status")
	require.True(t, ok)
	assert.Equal(t, string(operations.StatusFailed), status.AsString())
}

func TestRun_ContextTraceIDWinsOverSpan(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "notes.txt", "x\n")
	runner, recorder := newRecordingRunner(t, &logCapture{})

	ctx := infrastructure.WithTraceID(context.Background(), "fixed-trace")
	res, err := runner.Analyze(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, "fixed-trace", res.TraceID)
	assert.NotEmpty(t, recorder.Ended())
}

func TestSetTracerProvider_NilKeepsNoop(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "notes.txt", "x\n")

	runner := operations.NewRunner(nil, operations.DefaultOptions(), nil)
	runner.SetTracerProvider(nil)

	res, err := runner.Analyze(context.Background(), input)
	require.NoError(t, err)
	assert.NotEmpty(t, res.TraceID)
}
