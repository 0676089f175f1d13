package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"
)

// capture redirects output to a buffer for the duration of the test.
func capture(t *testing.T, v bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(v)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)

	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false after SetVerbose(false)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Debug("allocated id %d for %q", 3, "title")

	if got := buf.String(); got != "[DEBUG] allocated id 3 for \"title\"\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("should not appear")

	if buf.Len() != 0 {
		t.Errorf("expected no output when verbose is disabled, got %q", buf.String())
	}
}

func TestSection(t *testing.T) {
	buf := capture(t, true)

	Section("Import")

	if got := buf.String(); got != "\n=== Import ===\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestLevels(t *testing.T) {
	buf := capture(t, true)

	Info("read %d mappings", 2)
	Warn("unknown key %s", "x")

	want := "[INFO] read 2 mappings\n[WARN] unknown key x\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestError_IgnoresVerbosity(t *testing.T) {
	buf := capture(t, false)

	Info("hidden")
	Error("import failed: %v", "boom")

	if got := buf.String(); got != "[ERROR] import failed: boom\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetVerbose(i%2 == 0)
		}()
		go func() {
			defer wg.Done()
			Debug("message %d", i)
			_ = IsVerbose()
		}()
	}
	wg.Wait()
}
