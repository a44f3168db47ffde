package am

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PatchFormat identifies how a patch queue is laid out on disk.
type PatchFormat string

const (
	// FormatMbox is a single file containing one or more patches, each
	// beginning with a "From " envelope line, or a lone RFC 2822 message
	// with no envelope at all (spec.md §4.3: the all mailbox formats
	// collapse to "mbox" once split).
	FormatMbox PatchFormat = "mbox"

	// FormatMaildir is a directory following the Maildir convention
	// (cur/, new/, tmp/ subdirectories), one file per message.
	FormatMaildir PatchFormat = "maildir"
)

// DetectFormat probes path and returns its patch format, used when
// --patch-format is not given explicitly (spec.md §4.3).
func DetectFormat(path string) (PatchFormat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	if info.IsDir() {
		if isMaildir(path) {
			return FormatMaildir, nil
		}
		return "", fmt.Errorf("%w: %s is a directory but not a Maildir", ErrUnknownFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := s.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "From ") {
			return FormatMbox, nil
		}
		if looksLikeRFC2822Header(line) {
			// A single message with no mbox envelope is still valid input;
			// the splitter treats it as a one-patch mailbox.
			return FormatMbox, nil
		}
		break
	}
	if err := s.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// ParseFormat validates an explicit --patch-format value. Maildir is only
// ever reached through auto-detection (DetectFormat); spec.md §6 restricts
// the flag itself to {mbox} and requires other values to fail parse with a
// user error.
func ParseFormat(s string) (PatchFormat, error) {
	if PatchFormat(s) == FormatMbox {
		return FormatMbox, nil
	}
	return "", fmt.Errorf("%w: --patch-format must be %q, got %q", ErrUnknownFormat, FormatMbox, s)
}

func isMaildir(path string) bool {
	for _, sub := range []string{"cur", "new", "tmp"} {
		info, err := os.Stat(filepath.Join(path, sub))
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}

// looksLikeRFC2822Header reports whether line has the "Field-Name: value"
// shape of an email header.
func looksLikeRFC2822Header(line string) bool {
	colon := strings.IndexByte(line, ':')
	if colon <= 0 {
		return false
	}
	field := line[:colon]
	for _, r := range field {
		if r == '-' {
			continue
		}
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
