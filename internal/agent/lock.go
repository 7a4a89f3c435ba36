package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// lockTable hands out one mutex per agent name so operations on
// different agents never contend. Entries are created on first use and
// kept for the life of the process.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

func (t *lockTable) get(agentName string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[agentName]
	if !ok {
		l = &sync.Mutex{}
		t.locks[agentName] = l
	}
	return l
}

// acquireFileLock takes a blocking advisory lock on the agent's lock
// file, guarding the read-modify-write span against other processes.
// The returned release function must be called (typically deferred).
func acquireFileLock(metadataDir string) (release func(), err error) {
	if err := os.MkdirAll(metadataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating metadata directory: %w", err)
	}

	fl := flock.New(filepath.Join(metadataDir, "metadata.lock"))
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquiring metadata lock: %w", err)
	}
	return func() {
		_ = fl.Unlock()
	}, nil
}
