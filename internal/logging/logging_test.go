package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_Level(t *testing.T) {
	tests := []struct {
		level   string
		want    logrus.Level
		wantErr bool
	}{
		{level: "", want: logrus.InfoLevel},
		{level: "debug", want: logrus.DebugLevel},
		{level: "warn", want: logrus.WarnLevel},
		{level: "chatty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := New(Options{Level: tt.level, AppEnv: "test", Output: &bytes.Buffer{}})
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if log.GetLevel() != tt.want {
				t.Errorf("level = %s, want %s", log.GetLevel(), tt.want)
			}
		})
	}
}

func TestNew_WritesFieldsAndCaller(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Output: &buf, AppEnv: "test"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.WithField("status", "Drowsy").Info("status changed")

	out := buf.String()
	for _, want := range []string{"status changed", "Drowsy", "logging_test.go"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestNew_FileOutput(t *testing.T) {
	dir := t.TempDir()

	log, err := New(Options{Dir: dir, Output: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Info("to file")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "nidra-") {
		t.Errorf("expected one nidra-*.log file, got %v", entries)
	}
}

func TestNew_TestEnvSkipsFile(t *testing.T) {
	dir := t.TempDir()

	log, err := New(Options{Dir: dir, AppEnv: "test", Output: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Info("not to file")

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("APP_ENV=test should not write files, got %v", entries)
	}
}
