package am

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/infodancer/gitam/internal/metrics"
	"github.com/infodancer/gitam/internal/repo"
)

// StateMachine is the Session State Machine (spec.md §4.7): it owns the
// collaborators (splitter, applier, commit driver) and drives a session
// through setup/load/next/run/destroy.
type StateMachine struct {
	GitDir       string
	WorkDir      string
	ReflogAction string

	Repo    *repo.Repository
	Staging *repo.StagingArea
	Applier Applier
	Commit  *CommitDriver

	Logger  *slog.Logger
	Metrics metrics.Collector
}

// New builds a StateMachine rooted at gitDir, with its working tree at
// workDir (gitDir's parent in the common case of a non-bare repository).
func New(gitDir, workDir string, logger *slog.Logger, collector metrics.Collector) (*StateMachine, error) {
	r, err := repo.Open(gitDir)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = &metrics.NoopCollector{}
	}
	staging := repo.OpenStagingArea(gitDir)
	return &StateMachine{
		GitDir:       gitDir,
		WorkDir:      workDir,
		ReflogAction: "am",
		Repo:         r,
		Staging:      staging,
		Applier:      NewApplier(),
		Commit:       NewCommitDriver(r),
		Logger:       logger,
		Metrics:      collector,
	}, nil
}

// Setup splits paths into a new patch queue and writes a fresh session
// directory (spec.md §4.7 setup()). It fails with ErrSessionExists if a
// session is already in progress and ErrNoPatches if the input is empty.
func (m *StateMachine) Setup(ctx context.Context, paths []string, format PatchFormat) (*Session, error) {
	if InProgress(m.GitDir) {
		return nil, ErrSessionExists
	}

	splitter, err := NewSplitter(format)
	if err != nil {
		return nil, err
	}
	raw, err := splitter.Split(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrNoPatches
	}

	dir, err := Create(m.GitDir)
	if err != nil {
		return nil, err
	}

	for i, patch := range raw {
		n := i + 1
		if err := dir.WriteFile(PatchFileName(n, defaultPrec), patch); err != nil {
			return nil, err
		}
	}
	if err := dir.WriteInt("last", len(raw)); err != nil {
		return nil, err
	}
	if err := dir.WriteInt("next", 1); err != nil {
		return nil, err
	}
	if err := dir.WriteFile("info", []byte(fmt.Sprintf("format %s\n", format))); err != nil {
		return nil, err
	}

	m.Metrics.SessionStarted(len(raw))
	m.Logger.Info("am session started", "patches", len(raw))

	return NewSession(dir, len(raw)), nil
}

// Load reads an existing session directory back into memory (spec.md §4.7
// load()). It fails with ErrNoSession if none exists.
func (m *StateMachine) Load(ctx context.Context) (*Session, error) {
	dir, err := Open(m.GitDir)
	if err != nil {
		return nil, err
	}

	next, err := dir.ReadInt("next")
	if err != nil {
		return nil, err
	}
	last, err := dir.ReadInt("last")
	if err != nil {
		return nil, err
	}
	if next < 1 || next > last+1 {
		return nil, fmt.Errorf("%w: cursor %d out of range [1, %d]", ErrCorruptState, next, last+1)
	}

	session := NewSession(dir, last)
	session.cur = next

	if dir.HasFile("author-script") {
		data, err := dir.ReadFile("author-script")
		if err != nil {
			return nil, err
		}
		name, email, date, err := DecodeAuthorScript(data)
		if err != nil {
			return nil, err
		}
		session.SetAuthor(name, email, date)
	}
	if dir.HasFile("msg") {
		msg, err := dir.ReadFile("msg")
		if err != nil {
			return nil, err
		}
		session.SetMessage(msg)
	}

	m.Metrics.SessionResumed(session.Remaining())
	m.Logger.Info("am session resumed", "progress", session.String())

	return session, nil
}

// Run drives session to completion, applying and committing each remaining
// patch in order (spec.md §4.7 run()). On success the session directory is
// destroyed. On failure the session is left exactly as it was before the
// failing patch (invariant I2/I4), ready to be resumed after the user
// resolves the problem.
func (m *StateMachine) Run(ctx context.Context, session *Session) error {
	dir := session.Dir()

	if err := m.Staging.Lock(); err != nil {
		return err
	}
	defer m.Staging.Unlock()

	for !session.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}

		patchName := session.CurPatchFile()
		raw, err := dir.ReadFile(patchName)
		if err != nil {
			if errors.Is(err, ErrCorruptState) {
				// mail does not exist: go to advance (allow user to skip by rm)
				m.Metrics.PatchSkipped()
				m.Logger.Info("patch file removed, skipping", "patch", patchName)
				if err := m.advance(dir, session); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("reading patch %s: %w", patchName, err)
		}

		parsed, err := ParsePatch(raw)
		if err != nil {
			return fmt.Errorf("parsing patch %s: %w", patchName, err)
		}

		if parsed.Skip {
			m.Metrics.PatchSkipped()
			m.Logger.Info("skipping patch", "patch", patchName, "reason", "mail system internal data")
			if err := m.advance(dir, session); err != nil {
				return err
			}
			continue
		}

		if err := dir.WriteFile("author-script", EncodeAuthorScript(parsed.AuthorName, parsed.AuthorEmail, parsed.AuthorDate)); err != nil {
			return err
		}
		if err := dir.WriteFile("msg", parsed.Message); err != nil {
			return err
		}
		if err := dir.WriteFile("patch", parsed.Diff); err != nil {
			return err
		}
		session.SetAuthor(parsed.AuthorName, parsed.AuthorEmail, parsed.AuthorDate)
		session.SetMessage(parsed.Message)

		if parsed.Empty {
			m.Metrics.PatchFailed("empty-patch")
			fmt.Fprintln(os.Stderr, "Patch is empty. Was it split wrong?")
			return fmt.Errorf("%s: %w", patchName, ErrEmptyPatch)
		}

		fmt.Fprintf(os.Stderr, "Applying: %s\n", commitSubject(parsed.Message))

		if err := m.Applier.Apply(m.WorkDir, m.Staging, parsed.Diff); err != nil {
			m.Metrics.PatchFailed("apply-conflict")
			fmt.Fprintf(os.Stderr, "Patch failed at %s %s\n", patchName, commitSubject(parsed.Message))
			return fmt.Errorf("applying patch %s: %w", patchName, err)
		}

		hash, err := m.Commit.Commit(m.Staging, parsed.AuthorName, parsed.AuthorEmail, parsed.AuthorDate, parsed.Message, m.ReflogAction)
		if err != nil {
			m.Metrics.PatchFailed("commit-failed")
			return fmt.Errorf("committing patch %s: %w", patchName, err)
		}
		if err := dir.WriteFile("final-commit", []byte(hash+"\n")); err != nil {
			return err
		}

		m.Metrics.PatchApplied()
		m.Metrics.CommitCreated(len(parsed.Message))
		m.Logger.Info("applied patch", "patch", patchName, "commit", hash)

		if err := m.advance(dir, session); err != nil {
			return err
		}
	}

	m.Metrics.SessionDestroyed()
	m.Logger.Info("am session complete")
	return dir.Destroy()
}

// advance is the next() operation (spec.md §4.7): free per-patch fields by
// removing author-script and final-commit, then increment cur and persist
// the new next cursor. Crash-safe: if a crash lands between the removals
// and the next write, the following load re-parses the same patch, which
// is deterministic and therefore safe to repeat.
func (m *StateMachine) advance(dir *SessionDir, session *Session) error {
	if err := dir.RemoveFile("author-script"); err != nil {
		return err
	}
	if err := dir.RemoveFile("final-commit"); err != nil {
		return err
	}
	session.Advance()
	return dir.WriteInt("next", session.Cur())
}

// Destroy tears down session's directory without applying any further
// patches, the behavior a user-requested abort uses.
func (m *StateMachine) Destroy(session *Session) error {
	m.Metrics.SessionDestroyed()
	return session.Dir().Destroy()
}
