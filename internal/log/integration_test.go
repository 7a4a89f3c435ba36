//go:build integration

package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Exercises Init end to end the way root command startup does: prune,
// open today's file, fan out to stderr and disk, close.
func TestInitLifecycle(t *testing.T) {
	dir := t.TempDir()

	staleDay := time.Now().AddDate(0, 0, -21).Format(dayFormat)
	staleLog := filepath.Join(dir, debugFilePrefix+staleDay+debugFileSuffix)
	if err := os.WriteFile(staleLog, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Init(Options{DebugDir: dir, RetentionDays: 14}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if _, err := os.Stat(staleLog); !os.IsNotExist(err) {
		t.Errorf("stale debug log %s should have been pruned", staleLog)
	}

	Debug("pulling image", "image", "crowdcontrol:latest")
	Info("agent created", "agent", "alice")
	Warn("stale container reference", "agent", "alice")
	Error("docker is not available")
	Close()

	content, err := os.ReadFile(filepath.Join(dir, todayFileName()))
	if err != nil {
		t.Fatalf("reading debug log: %v", err)
	}

	// Every level lands on disk as one JSON record per line.
	var msgs []string
	for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		var record struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("debug log line is not JSON: %q: %v", line, err)
		}
		msgs = append(msgs, record.Msg)
	}
	for _, want := range []string{
		"pulling image",
		"agent created",
		"stale container reference",
		"docker is not available",
	} {
		found := false
		for _, msg := range msgs {
			if msg == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("debug log missing record %q, got %v", want, msgs)
		}
	}

	if target, err := os.Readlink(filepath.Join(dir, currentLink)); err != nil {
		t.Errorf("reading current symlink: %v", err)
	} else if target != todayFileName() {
		t.Errorf("current -> %q, want %q", target, todayFileName())
	}
}
