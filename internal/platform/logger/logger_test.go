package logger

import (
	"strings"
	"testing"
)

func TestSanitizeRedactsCredentialKeys(t *testing.T) {
	l := &Logger{redact: true}
	got := l.sanitize([]interface{}{"access_token", "abc", "password", "x", "topic_id", "t1"})
	if got[1] != "[REDACTED]" || got[3] != "[REDACTED]" {
		t.Fatalf("expected credential values redacted, got %v", got)
	}
	if got[5] != "t1" {
		t.Fatalf("expected topic_id untouched, got %v", got[5])
	}
}

func TestSanitizeHashesUserID(t *testing.T) {
	l := &Logger{redact: true}
	got := l.sanitize([]interface{}{"user_id", "u-123"})
	s, ok := got[1].(string)
	if !ok || !strings.HasPrefix(s, "hash:") || len(s) != len("hash:")+12 {
		t.Fatalf("expected hashed user id, got %v", got[1])
	}
}

func TestSanitizeDisabledPassesThrough(t *testing.T) {
	l := &Logger{redact: false}
	got := l.sanitize([]interface{}{"password", "x"})
	if got[1] != "x" {
		t.Fatalf("expected passthrough when redaction disabled, got %v", got[1])
	}
}

func TestSanitizeOddKeyCount(t *testing.T) {
	l := &Logger{redact: true}
	got := l.sanitize([]interface{}{"a", 1, "dangling"})
	if len(got) != 3 || got[2] != "dangling" {
		t.Fatalf("unexpected output %v", got)
	}
}
