package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func lastNonEmptyLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}

func TestLogger_IncludesStackAndServiceOnError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "sample-service")
	log.Error().Stack().Err(errors.New("boom")).Msg("something failed")

	line := lastNonEmptyLine(buf.String())
	if line == "" {
		t.Fatalf("no output captured")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("invalid json log: %v\n%s", err, line)
	}
	if svc, ok := payload["service"].(string); !ok || svc != "sample-service" {
		t.Fatalf("expected service=\"sample-service\", got %v", payload["service"])
	}
	if lvl, ok := payload["level"].(string); !ok || lvl != "error" {
		t.Fatalf("expected level=\"error\", got %v", payload["level"])
	}
	if _, ok := payload["stack"]; !ok {
		t.Fatalf("expected stack field in error log: %s", line)
	}
	if _, ok := payload["time"]; !ok {
		t.Fatalf("expected time field: %s", line)
	}
}

func TestLogger_InfoHasNoStack(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "svc")
	l.Info().Str("k", "v").Msg("hello")

	var payload map[string]any
	if err := json.Unmarshal([]byte(lastNonEmptyLine(buf.String())), &payload); err != nil {
		t.Fatalf("invalid json log: %v", err)
	}
	if payload["k"] != "v" || payload["message"] != "hello" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, ok := payload["stack"]; ok {
		t.Fatalf("info event must not carry a stack")
	}
}
