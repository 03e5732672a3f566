package store

import (
	"encoding/json"
	"errors"
	"os"
)

// Prefs are per-workspace UI preferences remembered between sessions.
type Prefs struct {
	// LastImageDir is where the image picker opened last.
	LastImageDir string `json:"lastImageDir,omitempty"`
	// LastDraftID is the draft most recently opened in the editor.
	LastDraftID string `json:"lastDraftId,omitempty"`
}

func (s Store) LoadPrefs() (Prefs, error) {
	b, err := os.ReadFile(s.prefsPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Prefs{}, nil
		}
		return Prefs{}, err
	}
	var p Prefs
	if err := json.Unmarshal(b, &p); err != nil {
		return Prefs{}, err
	}
	return p, nil
}

func (s Store) SavePrefs(p Prefs) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(s.Dir, prefsFileName+".*.tmp", s.prefsPath(), b, 0o600)
}
