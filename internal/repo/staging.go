package repo

import (
	"os"
	"path/filepath"
	"sort"
	"syscall"
)

// StagingArea models the index: the set of paths and blob contents that will
// make up the next commit's tree. Access is serialized by a real flock-style
// exclusive lock on a lock file in the repository's git directory, the same
// way a single build controller guards its working directory with
// syscall.Flock rather than a cooperating-library lock.
type StagingArea struct {
	gitDir  string
	lockFd  *os.File
	entries map[string][]byte
}

// OpenStagingArea returns a StagingArea rooted at gitDir. It does not take
// the lock; callers must call Lock before mutating the staging area.
func OpenStagingArea(gitDir string) *StagingArea {
	return &StagingArea{
		gitDir:  gitDir,
		entries: make(map[string][]byte),
	}
}

// Lock acquires the staging-area-scoped exclusive lock (spec.md §5). It is
// non-blocking: a second gitam invocation against the same staging area
// fails fast with ErrLocked rather than queuing.
func (s *StagingArea) Lock() error {
	if s.lockFd != nil {
		return ErrLocked
	}
	path := filepath.Join(s.gitDir, "index.lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		return ErrLocked
	}
	s.lockFd = f
	return nil
}

// Unlock releases the staging-area lock and removes the lock file.
func (s *StagingArea) Unlock() error {
	if s.lockFd == nil {
		return ErrNotLocked
	}
	path := s.lockFd.Name()
	if err := syscall.Flock(int(s.lockFd.Fd()), syscall.LOCK_UN); err != nil {
		return err
	}
	if err := s.lockFd.Close(); err != nil {
		return err
	}
	s.lockFd = nil
	return os.Remove(path)
}

// Add records path with the given blob content, replacing any prior content
// staged for the same path.
func (s *StagingArea) Add(path string, content []byte) {
	s.entries[path] = content
}

// Remove drops path from the staging area, as a patch's diff deleting a file
// would.
func (s *StagingArea) Remove(path string) {
	delete(s.entries, path)
}

// Files returns the staged paths in sorted order, the order a tree object's
// entries are written in.
func (s *StagingArea) Files() []string {
	paths := make([]string, 0, len(s.entries))
	for p := range s.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Content returns the staged content for path.
func (s *StagingArea) Content(path string) ([]byte, bool) {
	c, ok := s.entries[path]
	return c, ok
}

// Reset clears all staged entries. The commit driver does not call it, so
// entries staged by earlier patches stay in the trees of later commits.
func (s *StagingArea) Reset() {
	s.entries = make(map[string][]byte)
}
