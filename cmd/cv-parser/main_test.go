package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/joseph-ayodele/cv-parser/internal/common"
)

func TestNewLoggerHonorsLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(common.LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("pipeline.notify.failed", "document_id", 42)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line leaked at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"pipeline.notify.failed"`) || !strings.Contains(out, `"document_id":42`) {
		t.Fatalf("unexpected json output: %s", out)
	}
}

func TestTextLoggerDropsTime(t *testing.T) {
	var buf bytes.Buffer
	newLogger(common.LogConfig{Level: "debug"}, &buf).Debug("repository.skills.reconciled", "created", 1)
	out := buf.String()
	if strings.Contains(out, "time=") {
		t.Fatalf("time attribute should be removed: %s", out)
	}
	if !strings.Contains(out, "msg=repository.skills.reconciled") {
		t.Fatalf("unexpected text output: %s", out)
	}
}

func TestOpenDBRequiresDSN(t *testing.T) {
	if _, err := openDB(context.Background(), &common.Config{}, nil); err == nil {
		t.Fatal("expected an error without DB_URL")
	}
}
