package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/life-sheet/internal/service"
)

// SessionFile persists the CLI session between invocations.
type SessionFile struct {
	path string
}

// NewSessionFile returns a session file at path.
func NewSessionFile(path string) *SessionFile {
	return &SessionFile{path: path}
}

// Path returns the file location.
func (f *SessionFile) Path() string {
	return f.path
}

// Load reads the saved session. A missing file is an empty session.
func (f *SessionFile) Load() (service.Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return service.Session{}, nil
	}
	if err != nil {
		return service.Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	var sess service.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return service.Session{}, fmt.Errorf("failed to parse session file %s: %w", f.path, err)
	}
	return sess, nil
}

// Save writes the session, readable by the owner only.
func (f *SessionFile) Save(sess service.Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return os.WriteFile(f.path, data, 0600)
}

// Clear removes the saved session.
func (f *SessionFile) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
