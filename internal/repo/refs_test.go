package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveHEADNoCommits(t *testing.T) {
	r, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_, err = r.ResolveHEAD()
	if err != ErrNoSuchRef {
		t.Errorf("ResolveHEAD() error = %v, want ErrNoSuchRef", err)
	}
}

func TestUpdateRefCreatesHEADAndReflog(t *testing.T) {
	dir := t.TempDir()
	r, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := r.UpdateRef("aaaa1111", "am", "apply patch 0001"); err != nil {
		t.Fatalf("UpdateRef() error = %v", err)
	}

	headData, err := os.ReadFile(filepath.Join(dir, "HEAD"))
	if err != nil {
		t.Fatalf("reading HEAD: %v", err)
	}
	if strings.TrimSpace(string(headData)) != "ref: refs/heads/main" {
		t.Errorf("HEAD = %q, want 'ref: refs/heads/main'", headData)
	}

	got, err := r.ResolveHEAD()
	if err != nil {
		t.Fatalf("ResolveHEAD() error = %v", err)
	}
	if got != "aaaa1111" {
		t.Errorf("ResolveHEAD() = %q, want 'aaaa1111'", got)
	}

	reflog, err := os.ReadFile(filepath.Join(dir, "logs", "refs", "heads", "main"))
	if err != nil {
		t.Fatalf("reading reflog: %v", err)
	}
	if !strings.Contains(string(reflog), "am: apply patch 0001") {
		t.Errorf("reflog = %q, want it to contain 'am: apply patch 0001'", reflog)
	}
}

func TestUpdateRefSequence(t *testing.T) {
	dir := t.TempDir()
	r, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := r.UpdateRef("hash1", "am", "first"); err != nil {
		t.Fatalf("UpdateRef() error = %v", err)
	}
	if err := r.UpdateRef("hash2", "am", "second"); err != nil {
		t.Fatalf("UpdateRef() error = %v", err)
	}

	got, err := r.ResolveHEAD()
	if err != nil {
		t.Fatalf("ResolveHEAD() error = %v", err)
	}
	if got != "hash2" {
		t.Errorf("ResolveHEAD() = %q, want 'hash2'", got)
	}

	reflog, err := os.ReadFile(filepath.Join(dir, "logs", "refs", "heads", "main"))
	if err != nil {
		t.Fatalf("reading reflog: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(reflog)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 reflog lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "hash1 hash2 ") {
		t.Errorf("reflog line 2 = %q, want it to start with 'hash1 hash2 '", lines[1])
	}
}
