package repo

import (
	"bytes"
	"compress/gzip"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Repository is a minimal content-addressed object store rooted at a git
// directory. It is not wire-compatible with a real git repository; it
// implements just enough of the object model (blobs, trees, commits, a HEAD
// ref with reflog) for the commit driver to record one commit per applied
// patch.
type Repository struct {
	GitDir string
}

// Open returns a Repository rooted at gitDir, creating the object and refs
// directories if they do not already exist.
func Open(gitDir string) (*Repository, error) {
	for _, dir := range []string{
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "heads"),
		filepath.Join(gitDir, "logs", "refs", "heads"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return &Repository{GitDir: gitDir}, nil
}

// WriteBlob stores data as a gzip-compressed, content-addressed object and
// returns its hex hash.
func (r *Repository) WriteBlob(data []byte) (string, error) {
	return r.writeObject("blob", data)
}

// TreeEntry is one line of a tree object: a staged path and the hash of its
// blob.
type TreeEntry struct {
	Path string
	Hash string
}

// WriteTree builds and stores a tree object from the given entries (sorted
// by path for a reproducible hash) and returns its hex hash.
func (r *Repository) WriteTree(entries []TreeEntry) (string, error) {
	sorted := append([]TreeEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var buf bytes.Buffer
	for _, e := range sorted {
		fmt.Fprintf(&buf, "%s %s\n", e.Hash, e.Path)
	}
	return r.writeObject("tree", buf.Bytes())
}

// WriteCommit encodes and stores a commit object, returning its hex hash.
func (r *Repository) WriteCommit(c Commit) (string, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return "", err
	}
	return r.writeObject("commit", buf.Bytes())
}

// ReadObject decompresses and returns the raw payload stored for hash,
// without its "<kind> <len>\0" framing.
func (r *Repository) ReadObject(hash string) ([]byte, error) {
	f, err := os.Open(r.objectPath(hash))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	framed, err := io.ReadAll(gz)
	if err != nil {
		return nil, err
	}
	nul := bytes.IndexByte(framed, 0)
	if nul < 0 {
		return nil, fmt.Errorf("object %s: missing frame header", hash)
	}
	return framed[nul+1:], nil
}

func (r *Repository) writeObject(kind string, payload []byte) (string, error) {
	framed := append([]byte(fmt.Sprintf("%s %d\x00", kind, len(payload))), payload...)

	h := sha1.Sum(framed)
	hash := hex.EncodeToString(h[:])

	path := r.objectPath(hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil // already stored; objects are immutable
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(framed); err != nil {
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return hash, nil
}

func (r *Repository) objectPath(hash string) string {
	return filepath.Join(r.GitDir, "objects", hash[:2], hash[2:])
}
