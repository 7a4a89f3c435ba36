package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	debugFilePrefix = "crowdcontrol-"
	debugFileSuffix = ".jsonl"
	currentLink     = "current"
	dayFormat       = "2006-01-02"
)

// debugFile appends JSON log records to one file per day,
// crowdcontrol-YYYY-MM-DD.jsonl, and keeps a "current" symlink pointing
// at today's file. Writes that cross midnight roll over to a new file.
type debugFile struct {
	dir string

	mu  sync.Mutex
	f   *os.File
	day string
}

func openDebugFile(dir string) (*debugFile, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating debug log directory: %w", err)
	}
	d := &debugFile{dir: dir}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.openCurrent(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *debugFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if time.Now().Format(dayFormat) != d.day {
		if err := d.openCurrent(); err != nil {
			return 0, err
		}
	}
	return d.f.Write(p)
}

func (d *debugFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}

// openCurrent opens today's file and repoints the symlink. Callers hold
// d.mu.
func (d *debugFile) openCurrent() error {
	if d.f != nil {
		d.f.Close()
	}

	day := time.Now().Format(dayFormat)
	fileName := debugFilePrefix + day + debugFileSuffix
	f, err := os.OpenFile(filepath.Join(d.dir, fileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening debug log file: %w", err)
	}
	d.f = f
	d.day = day

	// Symlink update is best effort; logging must not fail over it.
	link := filepath.Join(d.dir, currentLink)
	tmp := link + ".tmp"
	os.Remove(tmp)
	if err := os.Symlink(fileName, tmp); err == nil {
		_ = os.Rename(tmp, link)
	}
	return nil
}

// pruneOldLogs deletes crowdcontrol debug logs older than retentionDays.
// Files that do not follow the crowdcontrol-YYYY-MM-DD.jsonl pattern are
// left alone.
func pruneOldLogs(dir string, retentionDays int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()
		if !strings.HasPrefix(fileName, debugFilePrefix) || !strings.HasSuffix(fileName, debugFileSuffix) {
			continue
		}
		day := strings.TrimSuffix(strings.TrimPrefix(fileName, debugFilePrefix), debugFileSuffix)
		fileDate, err := time.Parse(dayFormat, day)
		if err != nil {
			continue
		}
		if fileDate.Before(cutoff) {
			os.Remove(filepath.Join(dir, fileName))
		}
	}
}
