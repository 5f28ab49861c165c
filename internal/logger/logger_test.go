package logger

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
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

func TestLevels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		log     func()
		want    string
	}{
		{"debug verbose", true, func() { Debug("chunk %d", 3) }, "[DEBUG] chunk 3\n"},
		{"debug quiet", false, func() { Debug("chunk %d", 3) }, ""},
		{"info verbose", true, func() { Info("loaded %s", "a.md") }, "[INFO] loaded a.md\n"},
		{"info quiet", false, func() { Info("loaded %s", "a.md") }, ""},
		{"warn verbose", true, func() { Warn("skipped %s", "b.pdf") }, "[WARN] skipped b.pdf\n"},
		{"warn quiet", false, func() { Warn("skipped %s", "b.pdf") }, "[WARN] skipped b.pdf\n"},
		{"error quiet", false, func() { Error("boom") }, "[ERROR] boom\n"},
		{"section verbose", true, func() { Section("Ingest") }, "\n=== Ingest ===\n"},
		{"section quiet", false, func() { Section("Ingest") }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.verbose)
			tt.log()
			if got := buf.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestElapsed(t *testing.T) {
	buf := capture(t, true)
	Elapsed("embed", time.Now().Add(-1500*time.Millisecond))

	out := buf.String()
	if !strings.HasPrefix(out, "[DEBUG] embed took ") {
		t.Errorf("unexpected output: %q", out)
	}
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func TestConcurrentAccess(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&lockedWriter{w: &buf})
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", n)
			Warn("concurrent %d", n)
			IsVerbose()
			SetVerbose(false)
		}(i)
	}
	wg.Wait()

	if strings.Count(buf.String(), "[WARN]") != 10 {
		t.Error("expected every warning to be written")
	}
}
