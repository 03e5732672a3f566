package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	sqliteFileName = "drafts.sqlite"
	prefsFileName  = "prefs.json"
	imagesDirName  = "images"
	outboxDirName  = "outbox"
	logFileName    = "draftpad.log"
)

var ErrNotFound = errors.New("not found")

// Store is a draftpad workspace directory.
type Store struct {
	Dir string
}

// DefaultDir returns ~/.draftpad. DRAFTPAD_DIR and --dir are resolved by the caller.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".draftpad"), nil
}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store: empty dir")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string { return filepath.Join(s.Dir, sqliteFileName) }
func (s Store) prefsPath() string  { return filepath.Join(s.Dir, prefsFileName) }
func (s Store) ImagesDir() string  { return filepath.Join(s.Dir, imagesDirName) }
func (s Store) OutboxDir() string  { return filepath.Join(s.Dir, outboxDirName) }
func (s Store) LogPath() string    { return filepath.Join(s.Dir, logFileName) }

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// WriteFileAtomic writes b to path through a temp file in the same directory.
func WriteFileAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return atomicWriteFile(dir, filepath.Base(path)+".*.tmp", path, b, 0o644)
}
