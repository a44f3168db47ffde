// Package am implements the mailbox patch-application state machine: a
// resumable queue of email-formatted patches applied one commit at a time
// onto the current branch.
package am

import "errors"

// ErrNoSession is returned by Load when no session directory exists.
var ErrNoSession = errors.New("am: no session in progress")

// ErrSessionExists is returned by Setup when a session directory already
// exists (invariant I1: at most one session directory at a time).
var ErrSessionExists = errors.New("am: a session is already in progress; resolve it before starting a new one")

// ErrNoPatches is returned by Setup when the input contains no patches to
// apply.
var ErrNoPatches = errors.New("am: no patches found in input")

// ErrCorruptState is returned when a required session file is missing or
// unreadable mid-run — a condition the state machine cannot recover from
// automatically.
var ErrCorruptState = errors.New("am: session directory is corrupt")

// ErrMalformedAuthorScript is returned when an author-script file does not
// round-trip through the strict shell-quoting codec.
var ErrMalformedAuthorScript = errors.New("am: malformed author-script")

// ErrUnknownFormat is returned when the format detector cannot classify the
// given input, or when an explicit --patch-format value is not recognized.
var ErrUnknownFormat = errors.New("am: unable to detect patch format")

// ErrEmptyPatch is returned by Run when the current patch carries no diff
// content after the commit message boundary (ParsePatch reports this by
// setting ParsedPatch.Empty).
var ErrEmptyPatch = errors.New("am: patch is empty")

// ErrApplyFailed is returned by the applier on a hunk that cannot be matched
// against the current file contents.
var ErrApplyFailed = errors.New("am: patch does not apply")
