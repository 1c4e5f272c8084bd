package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	a := NewZerologAdapterWithLogger(zerolog.New(&buf))

	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a.Warn("not synced",
		String("camera", "/stereo_down"),
		Int("queue", 5),
		Float64("error_s", 0.25),
		Bool("init", true),
		Duration("staleness", 6*time.Second),
		Time("stamp", stamp),
		Err(errors.New("boom")),
	)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}

	if got["level"] != "warn" {
		t.Errorf("level = %v, want warn", got["level"])
	}
	if got["message"] != "not synced" {
		t.Errorf("message = %v, want %q", got["message"], "not synced")
	}
	if got["camera"] != "/stereo_down" {
		t.Errorf("camera = %v", got["camera"])
	}
	if got["queue"].(float64) != 5 {
		t.Errorf("queue = %v, want 5", got["queue"])
	}
	if got["error"] != "boom" {
		t.Errorf("error = %v, want boom", got["error"])
	}
	if _, ok := got["stamp"]; !ok {
		t.Error("stamp field missing")
	}
}

func TestZerologAdapter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	a := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	a.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug message written at info level: %s", buf.String())
	}

	a.Info("shown")
	if buf.Len() == 0 {
		t.Fatal("info message not written")
	}
}

func TestZerologAdapter_StampPrecision(t *testing.T) {
	var buf bytes.Buffer
	a := NewZerologAdapterWithLogger(zerolog.New(&buf))

	a.Info("pair", Time("stamp", time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)))

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if got["stamp"] != "2024-05-01T12:00:00.123456789Z" {
		t.Errorf("stamp = %v", got["stamp"])
	}
}

type captureLogger struct {
	NoopLogger
	fields []Field
}

func (c *captureLogger) Warn(_ string, fields ...Field) { c.fields = fields }

func TestNamed(t *testing.T) {
	var buf bytes.Buffer
	z := Named(NewZerologAdapterWithLogger(zerolog.New(&buf)), "watchdog")
	z.Info("tick")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if got["component"] != "watchdog" {
		t.Errorf("component = %v, want watchdog", got["component"])
	}

	c := &captureLogger{}
	Named(c, "matcher").Warn("mismatch", Int("n", 1))
	if len(c.fields) != 2 || c.fields[0].Value != "matcher" || c.fields[1].Key != "n" {
		t.Errorf("fields = %+v", c.fields)
	}
}
