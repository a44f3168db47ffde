package am

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DirName is the session directory's fixed name under the repository's git
// directory (spec.md §6: "<gitdir>/rebase-apply").
const DirName = "rebase-apply"

// SessionDir is the Session Directory Abstraction (spec.md §4.1): the
// on-disk representation of an in-progress am session. Every write goes
// through WriteFile, which writes to a uniquely-named temporary file in the
// same directory and renames it into place, so a crash between write and
// rename never leaves a half-written session file behind (invariant I4).
type SessionDir struct {
	Path string
}

// DirPath returns the session directory path for the given git directory.
func DirPath(gitDir string) string {
	return filepath.Join(gitDir, DirName)
}

// InProgress reports whether a session directory already exists under
// gitDir (invariant I1: at most one session directory at a time).
func InProgress(gitDir string) bool {
	_, err := os.Stat(DirPath(gitDir))
	return err == nil
}

// Create makes a fresh, empty session directory. It fails with
// ErrSessionExists if one is already present.
func Create(gitDir string) (*SessionDir, error) {
	path := DirPath(gitDir)
	if _, err := os.Stat(path); err == nil {
		return nil, ErrSessionExists
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}
	return &SessionDir{Path: path}, nil
}

// Open returns the SessionDir for an existing session, or ErrNoSession if
// none exists.
func Open(gitDir string) (*SessionDir, error) {
	path := DirPath(gitDir)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	return &SessionDir{Path: path}, nil
}

// WriteFile atomically writes data to name within the session directory.
func (d *SessionDir) WriteFile(name string, data []byte) error {
	final := filepath.Join(d.Path, name)
	tmp := filepath.Join(d.Path, "."+name+"."+uuid.New().String())

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// ReadFile reads name from the session directory.
func (d *SessionDir) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.Path, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s missing", ErrCorruptState, name)
		}
		return nil, err
	}
	return data, nil
}

// HasFile reports whether name exists in the session directory.
func (d *SessionDir) HasFile(name string) bool {
	_, err := os.Stat(filepath.Join(d.Path, name))
	return err == nil
}

// RemoveFile deletes name from the session directory if present.
func (d *SessionDir) RemoveFile(name string) error {
	err := os.Remove(filepath.Join(d.Path, name))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// ReadInt reads name as a decimal integer, trimming surrounding whitespace.
func (d *SessionDir) ReadInt(name string) (int, error) {
	data, err := d.ReadFile(name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not an integer: %v", ErrCorruptState, name, err)
	}
	return n, nil
}

// WriteInt atomically writes v as a decimal integer to name.
func (d *SessionDir) WriteInt(name string, v int) error {
	return d.WriteFile(name, []byte(strconv.Itoa(v)+"\n"))
}

// PatchFileName formats the zero-padded per-patch file name for patch number
// n at the session's configured precision (spec.md §3: prec = 4).
func PatchFileName(n, prec int) string {
	return fmt.Sprintf("%0*d", prec, n)
}

// Destroy removes the entire session directory (spec.md §4.7 destroy()).
func (d *SessionDir) Destroy() error {
	return os.RemoveAll(d.Path)
}
