package log

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grantledger/grant-node/config"
)

func TestNewLoggerJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := newLogger(&buf, config.LogFormatJSON, "grant:info,*:error")
	if err != nil {
		t.Fatal(err)
	}

	logger.With("module", "grant").Info("allocated", "amount", "10")
	logger.With("module", "consensus").Info("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	entry := map[string]interface{}{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["_msg"] != "allocated" || entry["module"] != "grant" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewLoggerErrors(t *testing.T) {
	t.Parallel()

	if _, err := newLogger(&bytes.Buffer{}, "xml", "*:info"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := newLogger(&bytes.Buffer{}, config.LogFormatPlain, "grant:loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewLoggerFile(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.LogPath = filepath.Join(t.TempDir(), "node.log")

	if _, err := NewLogger(cfg); err != nil {
		t.Fatal(err)
	}
}
