package am

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/infodancer/gitam/internal/repo"
)

// CommitDriver is the Commit Driver (spec.md §4.6): it turns a staged tree
// plus an author identity and message into a new commit, advancing the
// current branch and appending a reflog entry.
type CommitDriver struct {
	Repo *repo.Repository
}

// NewCommitDriver returns a CommitDriver writing into r.
func NewCommitDriver(r *repo.Repository) *CommitDriver {
	return &CommitDriver{Repo: r}
}

// Commit builds a tree from staging's current contents, creates a commit
// object with the given author identity and message, and moves the current
// branch to it. reflogAction is the GIT_REFLOG_ACTION prefix (spec.md §6).
func (d *CommitDriver) Commit(staging *repo.StagingArea, authorName, authorEmail, authorDate string, message []byte, reflogAction string) (string, error) {
	entries := make([]repo.TreeEntry, 0, len(staging.Files()))
	for _, path := range staging.Files() {
		content, _ := staging.Content(path)
		hash, err := d.Repo.WriteBlob(content)
		if err != nil {
			return "", err
		}
		entries = append(entries, repo.TreeEntry{Path: path, Hash: hash})
	}

	treeHash, err := d.Repo.WriteTree(entries)
	if err != nil {
		return "", err
	}

	var parents []string
	if parent, err := d.Repo.ResolveHEAD(); err == nil {
		parents = []string{parent}
	} else if err == repo.ErrNoSuchRef {
		fmt.Fprintln(os.Stderr, "applying to an empty history")
	} else {
		return "", err
	}

	when, err := parseAuthorDate(authorDate)
	if err != nil {
		when = time.Now()
	}

	commit := repo.Commit{
		Tree:    treeHash,
		Parents: parents,
		Author: repo.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  when,
		},
		Commit: repo.Signature{
			Name:  "gitam",
			Email: "gitam@localhost",
			When:  time.Now(),
		},
		Message: string(message),
	}

	hash, err := d.Repo.WriteCommit(commit)
	if err != nil {
		return "", err
	}

	if err := d.Repo.UpdateRef(hash, reflogAction, commitSubject(message)); err != nil {
		return "", err
	}

	return hash, nil
}

func commitSubject(message []byte) string {
	line, _, _ := bytes.Cut(message, []byte("\n"))
	return strings.TrimSpace(string(line))
}

// parseAuthorDate parses the RFC 2822 date string carried through from the
// patch's Date header. It returns an error when none of the layouts match
// (e.g. a hand-written test fixture using a non-standard format); Commit
// then uses time.Now instead.
func parseAuthorDate(date string) (time.Time, error) {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
		if t, err := time.Parse(layout, date); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable author date %q", date)
}
