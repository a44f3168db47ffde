package am

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestCreateAndInProgress(t *testing.T) {
	gitDir := t.TempDir()

	if InProgress(gitDir) {
		t.Fatalf("InProgress() = true before Create")
	}

	dir, err := Create(gitDir)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if dir.Path != filepath.Join(gitDir, DirName) {
		t.Errorf("Path = %q, want %q", dir.Path, filepath.Join(gitDir, DirName))
	}

	if !InProgress(gitDir) {
		t.Fatalf("InProgress() = false after Create")
	}

	if _, err := Create(gitDir); !errors.Is(err, ErrSessionExists) {
		t.Errorf("second Create() error = %v, want ErrSessionExists", err)
	}
}

func TestOpenNoSession(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("Open() error = %v, want ErrNoSession", err)
	}
}

func TestWriteReadFileRoundTrip(t *testing.T) {
	dir, err := Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := dir.WriteFile("msg", []byte("hello\n")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := dir.ReadFile("msg")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "hello\n" {
		t.Errorf("ReadFile() = %q, want %q", got, "hello\n")
	}

	if !dir.HasFile("msg") {
		t.Errorf("HasFile(msg) = false, want true")
	}
	if dir.HasFile("nonexistent") {
		t.Errorf("HasFile(nonexistent) = true, want false")
	}
}

func TestReadFileMissingIsCorruptState(t *testing.T) {
	dir, err := Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err = dir.ReadFile("next")
	if !errors.Is(err, ErrCorruptState) {
		t.Errorf("ReadFile() error = %v, want ErrCorruptState", err)
	}
}

func TestWriteReadIntRoundTrip(t *testing.T) {
	dir, err := Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := dir.WriteInt("next", 7); err != nil {
		t.Fatalf("WriteInt() error = %v", err)
	}
	got, err := dir.ReadInt("next")
	if err != nil {
		t.Fatalf("ReadInt() error = %v", err)
	}
	if got != 7 {
		t.Errorf("ReadInt() = %d, want 7", got)
	}
}

func TestPatchFileName(t *testing.T) {
	cases := []struct {
		n, prec int
		want    string
	}{
		{1, 4, "0001"},
		{42, 4, "0042"},
		{10000, 4, "10000"},
		{3, 2, "03"},
	}
	for _, tc := range cases {
		got := PatchFileName(tc.n, tc.prec)
		if got != tc.want {
			t.Errorf("PatchFileName(%d, %d) = %q, want %q", tc.n, tc.prec, got, tc.want)
		}
	}
}

func TestDestroyRemovesDirectory(t *testing.T) {
	gitDir := t.TempDir()
	dir, err := Create(gitDir)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := dir.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if InProgress(gitDir) {
		t.Errorf("InProgress() = true after Destroy")
	}
}

func TestRemoveFileMissingIsNotError(t *testing.T) {
	dir, err := Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := dir.RemoveFile("nope"); err != nil {
		t.Errorf("RemoveFile() error = %v, want nil", err)
	}
}
