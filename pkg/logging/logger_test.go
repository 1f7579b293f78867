package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestFormatterSortsFields(t *testing.T) {
	f := &Formatter{Source: "taskboard", Session: "abcd1234"}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local),
		Level:   logrus.InfoLevel,
		Message: "task created",
		Data:    logrus.Fields{"id": "12", "column": "todo"},
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	line := string(out)
	if !strings.HasPrefix(line, "2024-03-01 10:00:00 taskboard[abcd1234] INFO  task created") {
		t.Errorf("unexpected prefix: %q", line)
	}
	if !strings.HasSuffix(line, " column=todo id=12\n") {
		t.Errorf("Expected sorted fields at the end, got %q", line)
	}
}

func TestInitWritesFile(t *testing.T) {
	defer func() { Logger = newDefault() }()

	path := filepath.Join(t.TempDir(), "logs", "taskboard.log")
	if err := Init(path, "debug"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Logger.Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("could not read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("Expected log file to contain message, got %q", data)
	}
}

func TestInitRejectsBadLevel(t *testing.T) {
	defer func() { Logger = newDefault() }()
	if err := Init("", "loud"); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}
