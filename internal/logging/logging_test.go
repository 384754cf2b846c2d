package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/calvinalkan/progress-table/internal/logging"
)

func Test_ParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}

	for in, want := range tests {
		if got := logging.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q)=%v, want=%v", in, got, want)
		}
	}
}

func Test_New_Filters_Below_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(&buf, "warn", "text")
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()

	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered:\n%s", out)
	}

	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "key=value") {
		t.Fatalf("warn record missing:\n%s", out)
	}
}

func Test_New_Writes_JSON_When_Format_Json(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logging.New(&buf, "info", "json").Info("cache write failed", "error", "disk full")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("not JSON: %v\n%s", err, buf.String())
	}

	if got, want := record["msg"], "cache write failed"; got != want {
		t.Fatalf("msg=%v, want=%v", got, want)
	}
}

func Test_FromContext_Adds_Request_ID_When_Present(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	base := logging.New(&buf, "info", "text")
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")

	logging.FromContext(ctx, base).Info("request")
	logging.FromContext(context.Background(), base).Info("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if got, want := len(lines), 2; got != want {
		t.Fatalf("lines=%d, want=%d", got, want)
	}

	if !strings.Contains(lines[0], "request_id=req-42") {
		t.Fatalf("first line missing request id: %s", lines[0])
	}

	if strings.Contains(lines[1], "request_id") {
		t.Fatalf("second line should not have request id: %s", lines[1])
	}
}
