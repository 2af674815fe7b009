package util

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(3) // debug level
	l.SetOutput(&buf)

	l.Error("e")
	l.Warn("w")
	l.Info("i")
	l.Verbose("v")
	l.Debug("d")

	output := buf.String()
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), output)
	}

	wantPrefixes := []string{"[ERR]", "[WRN]", "[INF]", "[VRB]", "[DBG]"}
	for i, prefix := range wantPrefixes {
		if !strings.Contains(lines[i], prefix) {
			t.Errorf("line %d %q missing prefix %q", i, lines[i], prefix)
		}
	}
}

func TestLogger_QuietMode(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(0) // quiet
	l.SetOutput(&buf)

	l.Info("should not appear")
	l.Verbose("should not appear")
	l.Debug("should not appear")
	l.Error("always appears")

	output := buf.String()
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 1 {
		t.Errorf("expected 1 line in quiet mode, got %d:\n%s", len(lines), output)
	}
}

func TestLogger_Timestamps(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(int(LogDebug))
	l.SetOutput(&buf)
	l.Info("test")

	// Debug level stamps every line with "HH:MM:SS.mmm".
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{3} \[INF\] test\n$`).MatchString(buf.String()) {
		t.Errorf("expected timestamp prefix, got %q", buf.String())
	}

	buf.Reset()
	quiet := NewLogger(int(LogVerbose))
	quiet.SetOutput(&buf)
	quiet.Info("test")
	if buf.String() != "[INF] test\n" {
		t.Errorf("below debug level = %q, want no timestamp", buf.String())
	}
}

func TestLogger_WarnLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(1) // normal
	l.SetOutput(&buf)

	l.Warn("warning message")

	if !strings.Contains(buf.String(), "[WRN]") {
		t.Errorf("expected [WRN] prefix, got %q", buf.String())
	}
}

func TestLogger_WithPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(2)
	l.SetOutput(&buf)

	child := l.WithPrefix("session 1234")
	child.Verbose("connected")
	l.Verbose("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "[VRB] session 1234: connected" {
		t.Errorf("child line = %q", lines[0])
	}
	if lines[1] != "[VRB] plain" {
		t.Errorf("parent line = %q", lines[1])
	}

	grand := child.WithPrefix("tunnel")
	grand.Error("boom")
	if !strings.Contains(buf.String(), "[ERR] session 1234 tunnel: boom") {
		t.Errorf("nested prefix missing:\n%s", buf.String())
	}
}
