package main

import (
	"collabSheet/contracts"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
)

func _newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func _newTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func _newTestExecutor() *ExpressionExecutor {
	canonicalizer := NewCanonicalizer()
	return NewExpressionExecutor(
		canonicalizer, NewCellReferenceResolver(canonicalizer),
		DefaultMaxFormulaDepth, _newTestLogger(), _newTestMetrics(),
	)
}

// _steppingClock returns start, start+1, start+2, ...
func _steppingClock(start int64) contracts.Clock {
	var current atomic.Int64
	current.Store(start - 1)
	return func() int64 {
		return current.Add(1)
	}
}

func _fixedClock(now int64) contracts.Clock {
	return func() int64 {
		return now
	}
}

func _createTmpDbPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "state.db")
}

func _removeFile(path string) {
	_ = os.Remove(path)
}

func _parseJsonBody(w *httptest.ResponseRecorder) (map[string]any, error) {
	response := map[string]any{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	return response, err
}

func _cell(rawInput string, computedValue contracts.CellValue, timestamp int64) contracts.CellData {
	return contracts.CellData{RawInput: rawInput, ComputedValue: computedValue, Timestamp: timestamp}
}

const _eventuallyWait = time.Second

const _eventuallyTick = 5 * time.Millisecond
