package config

import (
	"strings"
	"testing"
)

func TestReadDefaults(t *testing.T) {
	cfg, err := Read(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Errorf("Read(empty) = %+v, want %+v", cfg, want)
	}
}

func TestReadClampsTickInterval(t *testing.T) {
	cfg, err := Read(strings.NewReader("TickIntervalMillis=3\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg.TickIntervalMillis != minTickIntervalMillis {
		t.Errorf("TickIntervalMillis = %d, want %d", cfg.TickIntervalMillis, minTickIntervalMillis)
	}
}

func TestReadClampsNumInstances(t *testing.T) {
	cfg, err := Read(strings.NewReader("NumInstances=5000\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg.NumInstances != maxInstances {
		t.Errorf("NumInstances = %d, want %d", cfg.NumInstances, maxInstances)
	}

	cfg, err = Read(strings.NewReader("NumInstances=0\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg.NumInstances != minInstances {
		t.Errorf("NumInstances = %d, want %d", cfg.NumInstances, minInstances)
	}
}

func TestReadNumInstancesSentinelPreserved(t *testing.T) {
	cfg, err := Read(strings.NewReader("NumInstances=-1\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg.NumInstances != NoInstances {
		t.Errorf("NumInstances = %d, want NoInstances", cfg.NumInstances)
	}
}

func TestReadIgnoresCommentsAndBlankLines(t *testing.T) {
	cfg, err := Read(strings.NewReader("# comment\n\nCustomMessage=hello world\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg.CustomMessage != "hello world" {
		t.Errorf("CustomMessage = %q, want %q", cfg.CustomMessage, "hello world")
	}
}

func TestReadFirstCounter(t *testing.T) {
	cfg, err := Read(strings.NewReader("FirstCounter=42\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg.FirstCounter != 42 {
		t.Errorf("FirstCounter = %d, want 42", cfg.FirstCounter)
	}
}
