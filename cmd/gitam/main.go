// Command gitam applies a queue of patches to a repository's working tree,
// one at a time, tracking progress in a crash-safe session directory so an
// interrupted run can be resumed exactly where it left off.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/infodancer/gitam/internal/am"
	"github.com/infodancer/gitam/internal/config"
	"github.com/infodancer/gitam/internal/gc"
	"github.com/infodancer/gitam/internal/logging"
	"github.com/infodancer/gitam/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "gc" {
		os.Exit(runGC(os.Args[2:]))
	}
	os.Exit(run())
}

// runGC implements the "gitam gc --auto" subcommand that internal/gc's
// TriggerAuto spawns after a successful run (SPEC_FULL.md §2 item 13,
// §4.8 step 8).
func runGC(args []string) int {
	fs := flag.NewFlagSet("gc", flag.ContinueOnError)
	fs.Bool("auto", false, "only run maintenance heuristically (currently always runs)")
	gitDir := fs.String("gitdir", ".git", "Repository metadata directory")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	logger := logging.NewLogger("info")
	if err := gc.RunAuto(logger, *gitDir); err != nil {
		fmt.Fprintf(os.Stderr, "gc: %v\n", err)
		return 128
	}
	return 0
}

func run() int {
	flags := config.ParseFlags()

	cfg, err := config.LoadWithFlags(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}

	logger := logging.NewLogger(cfg.LogLevel)

	var collector metrics.Collector = &metrics.NoopCollector{}
	if cfg.Metrics.Enabled {
		collector = metrics.NewPrometheusCollector(prometheus.DefaultRegisterer)
	}

	gitDir := cfg.GitDir
	if flags.GitDir != "" {
		gitDir = flags.GitDir
	}
	workDir := filepath.Dir(gitDir)

	reflogAction := os.Getenv("GIT_REFLOG_ACTION")
	if reflogAction == "" {
		reflogAction = cfg.ReflogAction
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewPrometheusServer(cfg.Metrics.Address, cfg.Metrics.Path)
		go func() {
			if err := metricsServer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("metrics server error", "error", err)
			}
		}()
		logger.Info("metrics server started", "address", cfg.Metrics.Address, "path", cfg.Metrics.Path)
	}

	machine, err := am.New(gitDir, workDir, logger, collector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening repository: %v\n", err)
		return 128
	}
	machine.ReflogAction = reflogAction

	session, err := resumeOrStart(ctx, machine, flags)
	if err != nil {
		return translateExitCode(err)
	}

	if err := machine.Run(ctx, session); err != nil {
		// machine.Run already printed the scenario-specific user-facing
		// message ("Patch is empty. Was it split wrong?", "Patch failed at
		// NNNN <first line>") to stderr. Here the error itself is printed,
		// except for an empty patch, followed by the advice hint.
		if !errors.Is(err, am.ErrEmptyPatch) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		if cfg.AdviceAmWorkdir {
			fmt.Fprintf(os.Stderr, "hint: see %s for details\n", am.DirPath(gitDir))
		}
		return translateExitCode(err)
	}

	gc.TriggerAuto(logger, gitDir)

	logger.Info("gitam complete")
	return 0
}

// resumeOrStart decides between Load (a session is already in progress,
// invariant I1) and Setup (fresh invocation with positional patch sources),
// matching spec.md §6's rule that a second invocation with new input while
// one is pending is a user error.
func resumeOrStart(ctx context.Context, machine *am.StateMachine, flags *config.Flags) (*am.Session, error) {
	if am.InProgress(machine.GitDir) {
		if len(flags.Args) > 0 {
			return nil, fmt.Errorf("%w: a session is already in progress, resolve it before starting a new one", am.ErrSessionExists)
		}
		return machine.Load(ctx)
	}

	var format am.PatchFormat
	switch {
	case flags.PatchFormat != "":
		// spec.md §6: --patch-format accepts only "mbox"; anything else,
		// including "maildir", fails parse with a user error. Maildir is
		// only ever reached through auto-detection below.
		parsed, err := am.ParseFormat(flags.PatchFormat)
		if err != nil {
			return nil, err
		}
		format = parsed
	case len(flags.Args) > 0:
		detected, err := am.DetectFormat(flags.Args[0])
		if err != nil {
			return nil, err
		}
		format = detected
	default:
		format = am.FormatMbox
	}

	return machine.Setup(ctx, flags.Args, format)
}

// translateExitCode maps an am error kind to spec.md §6's exit codes: 0
// success (handled by the caller), 128 for unrecoverable session/repository
// conditions, 1 reserved for option/config parsing (handled earlier in run).
// A run cancelled by SIGINT/SIGTERM exits with 130.
func translateExitCode(err error) int {
	switch {
	case errors.Is(err, am.ErrSessionExists),
		errors.Is(err, am.ErrNoSession),
		errors.Is(err, am.ErrNoPatches),
		errors.Is(err, am.ErrCorruptState),
		errors.Is(err, am.ErrMalformedAuthorScript),
		errors.Is(err, am.ErrUnknownFormat),
		errors.Is(err, am.ErrApplyFailed):
		return 128
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 128
	}
}
