package tablesync

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Outcome is the result of writing one table.
type Outcome string

const (
	Unchanged  Outcome = "unchanged"
	WouldWrite Outcome = "would write"
	Updated    Outcome = "updated"
)

// backupTimeFormat is appended to backup file names.
const backupTimeFormat = "20060102-150405"

// Hash returns the short content hash used to compare tables.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:12]
}

// Writer replaces files only when their content changes.
type Writer struct {
	// DryRun reports WouldWrite instead of touching the filesystem.
	DryRun bool
	// Now stamps backup names; defaults to time.Now.
	Now func() time.Time
	Log *zap.Logger
}

// WriteResult describes what Write did to one file.
type WriteResult struct {
	Path    string
	Outcome Outcome
	Backup  string // backup path, empty when none was made
}

// Write compares the hash of content with the hash of the file at path and
// acts on the difference. On change, an existing file is first copied to
// <path>.bak.<timestamp>; the target is then replaced through a temporary
// file in the same directory.
func (w *Writer) Write(path string, content []byte) (*WriteResult, error) {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	res := &WriteResult{Path: path}

	existing, err := os.ReadFile(path)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if exists && Hash(existing) == Hash(content) {
		res.Outcome = Unchanged
		return res, nil
	}

	if w.DryRun {
		res.Outcome = WouldWrite
		return res, nil
	}

	perm := os.FileMode(0644)
	if exists {
		if info, err := os.Stat(path); err == nil {
			perm = info.Mode().Perm()
		}
		backup, err := w.backup(path, existing, perm)
		if err != nil {
			return nil, err
		}
		res.Backup = backup
		log.Debug("backed up table", zap.String("path", path), zap.String("backup", backup))
	}

	if err := replaceFile(path, content, perm); err != nil {
		return nil, err
	}
	res.Outcome = Updated
	return res, nil
}

// backup writes data next to path under a timestamped name. The name is made
// unique if a backup with the same second already exists.
func (w *Writer) backup(path string, data []byte, perm os.FileMode) (string, error) {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}

	base := path + ".bak." + now().Format(backupTimeFormat)
	name := base
	for i := 1; ; i++ {
		f, err := os.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
		if err == nil {
			if _, err := f.Write(data); err != nil {
				f.Close()
				return "", fmt.Errorf("writing backup %s: %w", name, err)
			}
			if err := f.Close(); err != nil {
				return "", fmt.Errorf("closing backup %s: %w", name, err)
			}
			return name, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("creating backup %s: %w", name, err)
		}
		name = fmt.Sprintf("%s.%d", base, i)
	}
}

// replaceFile writes content to a temp file beside path and renames it over
// path, so readers never observe a half-written table.
func replaceFile(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
