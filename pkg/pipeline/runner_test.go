package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/slicegrid/slicegrid/pkg/cache"
	"github.com/slicegrid/slicegrid/pkg/errors"
)

const testDescriptor = `{
	"name": "Runner Test",
	"screen": {
		"regions": [
			{
				"uniqueId": "full",
				"params": [{"name": "Name", "value": "Full Frame"}],
				"outputQuad": {"vertices": [
					{"x": 0, "y": 0}, {"x": 1920, "y": 0},
					{"x": 1920, "y": 1080}, {"x": 0, "y": 1080}
				]}
			}
		]
	}
}`

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func writeDescriptor(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "show.json")
	if err := os.WriteFile(path, []byte(testDescriptor), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunnerExecute(t *testing.T) {
	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	res, err := runner.Execute(context.Background(), Options{Path: writeDescriptor(t)})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.CacheHit {
		t.Error("first run should not hit cache")
	}
	if res.DescriptorHash == "" {
		t.Error("missing descriptor hash")
	}
	if res.Result == nil || res.Result.Loaded() != 1 {
		t.Fatalf("result = %+v, want 1 loaded slice", res.Result)
	}
	if res.Result.Name != "Runner Test" {
		t.Errorf("Name = %q", res.Result.Name)
	}
}

func TestRunnerExecuteFromData(t *testing.T) {
	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	res, err := runner.Execute(context.Background(), Options{
		Data:   []byte(testDescriptor),
		Width:  960,
		Height: 540,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Result.ScaleX != 0.5 || res.Result.ScaleY != 0.5 {
		t.Errorf("scale = (%v, %v), want (0.5, 0.5)", res.Result.ScaleX, res.Result.ScaleY)
	}
}

func TestRunnerMemoization(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, testLogger())
	defer runner.Close()

	ctx := context.Background()
	opts := Options{Path: writeDescriptor(t), Width: 960, Height: 540}

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheHit {
		t.Error("first run should miss")
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheHit {
		t.Error("identical rerun should hit cache")
	}
	if second.Result.Size != first.Result.Size {
		t.Errorf("cached Size = %+v, want %+v", second.Result.Size, first.Result.Size)
	}
	if len(second.Result.Slices) != len(first.Result.Slices) {
		t.Errorf("cached slice count = %d, want %d", len(second.Result.Slices), len(first.Result.Slices))
	}

	// Different parameters miss and recompute.
	other, err := runner.Execute(ctx, Options{Path: opts.Path, View: "input", Width: 960, Height: 540})
	if err != nil {
		t.Fatalf("other Execute: %v", err)
	}
	if other.CacheHit {
		t.Error("different view must not reuse the cached entry")
	}

	// Refresh bypasses the cache.
	refreshed, err := runner.Execute(ctx, Options{Path: opts.Path, Width: 960, Height: 540, Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if refreshed.CacheHit {
		t.Error("refresh run must bypass the cache")
	}
}

func TestRunnerFileNotFound(t *testing.T) {
	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	_, err := runner.Execute(context.Background(), Options{
		Path: filepath.Join(t.TempDir(), "missing.xml"),
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeFileNotFound {
		t.Errorf("code = %v, want %v", got, errors.ErrCodeFileNotFound)
	}
}

func TestRunnerInvalidDescriptor(t *testing.T) {
	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	_, err := runner.Execute(context.Background(), Options{Data: []byte(`{"name": "no screen"}`)})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeMissingRoot {
		t.Errorf("code = %v, want %v", got, errors.ErrCodeMissingRoot)
	}
}
