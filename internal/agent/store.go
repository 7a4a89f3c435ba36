package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/config"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/log"
)

const metadataFileName = "metadata.json"

const metadataComment = "This file is auto-generated by crowdcontrol. Do not edit."

// metadataDocument is the on-disk layout of a record.
type metadataDocument struct {
	Comment string `json:"_comment"`
	Agent
}

// Store provides durable, concurrency-safe CRUD for agent records,
// one JSON document per agent under
// <workspaces>/<name>/.crowdcontrol/metadata.json.
//
// Writes on the same agent name are serialized by an in-process mutex
// plus an advisory file lock, so updates are safe across goroutines and
// across processes. Reads take no locks; writes replace the file
// atomically so a reader can never observe a torn record.
type Store struct {
	cfg   *config.Config
	locks *lockTable
}

// NewStore creates a store rooted at the configured workspaces directory.
func NewStore(cfg *config.Config) *Store {
	return &Store{cfg: cfg, locks: newLockTable()}
}

func (s *Store) metadataPath(agentName string) string {
	return filepath.Join(s.cfg.MetadataDir(agentName), metadataFileName)
}

// Save writes the record for a.Name, replacing any previous one. The
// persisted status is always the neutral value, never a live-derived
// one.
func (s *Store) Save(a *Agent) error {
	lock := s.locks.get(a.Name)
	lock.Lock()
	defer lock.Unlock()

	release, err := acquireFileLock(s.cfg.MetadataDir(a.Name))
	if err != nil {
		return fmt.Errorf("agent %q: %w", a.Name, err)
	}
	defer release()

	return s.write(a)
}

// write serializes and atomically replaces the metadata file. Callers
// must hold the agent's lock.
func (s *Store) write(a *Agent) error {
	doc := metadataDocument{Comment: metadataComment, Agent: *a}
	doc.Status = StatusCreated

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("agent %q: encoding metadata: %w", a.Name, err)
	}
	data = append(data, '\n')

	if err := renameio.WriteFile(s.metadataPath(a.Name), data, 0644); err != nil {
		return fmt.Errorf("agent %q: writing metadata: %w", a.Name, err)
	}
	log.Debug("saved agent metadata", "agent", a.Name)
	return nil
}

// Load reads the record for an agent name. The returned record's status
// is always StatusCreated regardless of what was persisted; callers
// needing live state must go through ComputeLiveStatus.
func (s *Store) Load(agentName string) (*Agent, error) {
	data, err := os.ReadFile(s.metadataPath(agentName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("agent %q: %w", agentName, ErrNotFound)
		}
		return nil, fmt.Errorf("agent %q: reading metadata: %w", agentName, err)
	}

	var doc metadataDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptedError{Name: agentName, Err: err}
	}

	a := doc.Agent
	// Never trust persisted execution state.
	a.Status = StatusCreated
	return &a, nil
}

// Update atomically applies mutate to the current record and persists
// the result. The load, mutation, and write all happen inside the
// agent's lock, so concurrent updates are strictly serialized and each
// observes its predecessor's write.
func (s *Store) Update(agentName string, mutate func(*Agent) error) (*Agent, error) {
	lock := s.locks.get(agentName)
	lock.Lock()
	defer lock.Unlock()

	release, err := acquireFileLock(s.cfg.MetadataDir(agentName))
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", agentName, err)
	}
	defer release()

	a, err := s.Load(agentName)
	if err != nil {
		return nil, err
	}
	if err := mutate(a); err != nil {
		return nil, fmt.Errorf("agent %q: applying update: %w", agentName, err)
	}
	if err := s.write(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes the record for an agent. Deleting a missing record
// returns ErrNotFound.
func (s *Store) Delete(agentName string) error {
	lock := s.locks.get(agentName)
	lock.Lock()
	defer lock.Unlock()

	err := os.Remove(s.metadataPath(agentName))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("agent %q: %w", agentName, ErrNotFound)
		}
		return fmt.Errorf("agent %q: removing metadata: %w", agentName, err)
	}
	return nil
}

// List enumerates agent names by scanning the workspaces directory for
// subdirectories carrying a metadata file. Unparseable records are
// still listed; Load surfaces their corruption. No ordering is
// guaranteed.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.WorkspacesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning workspaces directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(s.metadataPath(entry.Name())); err == nil {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// IsNotFound reports whether err means no record exists.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsCorrupted reports whether err means a record exists but is
// unparseable.
func IsCorrupted(err error) bool {
	var ce *CorruptedError
	return errors.As(err, &ce)
}
