// Package gc triggers background repository maintenance after a successful
// am run (spec.md §2: "trigger background maintenance (gc --auto)"). The
// maintenance itself — verifying that every loose object in the repository
// is still readable — runs via the "gc --auto" subcommand cmd/gitam
// registers for exactly this purpose.
package gc

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/infodancer/gitam/internal/repo"
)

// RunAuto performs one pass of background maintenance against the
// repository at gitDir: every loose object is read back and its framing
// validated, so silent corruption surfaces as a log warning instead of
// being discovered mid-patch-application later. It is deliberately
// conservative (no packing/pruning) since the object store has no
// reachability-based collection yet.
func RunAuto(logger *slog.Logger, gitDir string) error {
	if logger == nil {
		logger = slog.Default()
	}

	r, err := repo.Open(gitDir)
	if err != nil {
		return fmt.Errorf("gc: opening repository: %w", err)
	}

	objectsDir := filepath.Join(gitDir, "objects")
	fanout, err := os.ReadDir(objectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("gc: listing %s: %w", objectsDir, err)
	}

	var checked, corrupt int
	for _, dir := range fanout {
		if !dir.IsDir() || len(dir.Name()) != 2 {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(objectsDir, dir.Name()))
		if err != nil {
			return fmt.Errorf("gc: listing %s: %w", dir.Name(), err)
		}
		for _, entry := range entries {
			hash := dir.Name() + entry.Name()
			if _, err := r.ReadObject(hash); err != nil {
				corrupt++
				logger.Warn("gc --auto: unreadable object", "hash", hash, "error", err.Error())
				continue
			}
			checked++
		}
	}

	logger.Info("gc --auto: complete", "objects_checked", checked, "objects_corrupt", corrupt)
	return nil
}

// TriggerAuto spawns a detached "gitam gc --auto" child against self, the
// same way the session completes fire-and-forget: a failure to start or a
// non-zero exit is logged but never returned, since maintenance is
// best-effort and must never fail the am run that asked for it.
func TriggerAuto(logger *slog.Logger, gitDir string) {
	if logger == nil {
		logger = slog.Default()
	}

	self, err := os.Executable()
	if err != nil {
		logger.Warn("gc --auto: could not resolve self executable", "error", err.Error())
		return
	}

	cmd := exec.Command(self, "gc", "--auto", "--gitdir", gitDir)
	cmd.Env = inheritEnv("PATH", "HOME", "TMPDIR")
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		logger.Warn("gc --auto: failed to start", "error", err.Error())
		return
	}

	pid := cmd.Process.Pid
	logger.Debug("gc --auto: spawned", "pid", pid, "gitdir", gitDir)

	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Warn("gc --auto: exited with error", "pid", pid, "error", err.Error())
		}
	}()
}

func inheritEnv(keys ...string) []string {
	var env []string
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			env = append(env, k+"="+v)
		}
	}
	return env
}
