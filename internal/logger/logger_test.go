package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text")

	Info("chunk fetched", "file", "data.bin", "index", 3)

	out := buf.String()
	if !strings.Contains(out, "[INFO]") {
		t.Errorf("missing level marker: %q", out)
	}
	if !strings.Contains(out, "chunk fetched") {
		t.Errorf("missing message: %q", out)
	}
	if !strings.Contains(out, "file=data.bin") || !strings.Contains(out, "index=3") {
		t.Errorf("missing attrs: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "text")

	Debug("noise")
	Info("noise")
	Warn("kept")

	out := buf.String()
	if strings.Contains(out, "noise") {
		t.Errorf("low-level records should be filtered: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn record should pass: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "json")

	Info("queued", "depth", 7)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["msg"] != "queued" {
		t.Errorf("msg = %v, want queued", record["msg"])
	}
	if record["depth"] != float64(7) {
		t.Errorf("depth = %v, want 7", record["depth"])
	}
}

func TestSetLevelInvalid(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text")

	SetLevel("VERBOSE") // ignored
	Info("still logs")

	if !strings.Contains(buf.String(), "still logs") {
		t.Errorf("invalid level should not change filtering")
	}
}
