package am

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ParsedPatch is the result of parsing one raw message into the pieces the
// Commit Driver needs: author identity, composed commit message, and diff
// body (spec.md §4.5).
type ParsedPatch struct {
	AuthorName  string
	AuthorEmail string
	AuthorDate  string // RFC 2822 date string, passed through verbatim
	Message     []byte // composed commit message (subject + body)
	Diff        []byte
	Empty       bool // true when no diff content followed the message

	// Skip is true when the skip heuristic (spec.md §4.5 step 3) fired:
	// the author name is the literal string "Mail System Internal Data",
	// stray folder metadata some mailboxes leave behind. The caller must
	// advance past this patch without setting session fields or committing.
	Skip bool
}

// skipAuthorName is the literal author name the skip heuristic matches
// (spec.md §4.5 step 3, Scenario 5).
const skipAuthorName = "Mail System Internal Data"

var patchSubjectTag = regexp.MustCompile(`^\s*\[PATCH[^\]]*\]\s*`)
var fromHeaderRE = regexp.MustCompile(`^(.*?)\s*<([^<>]+)>\s*$`)
var diffGitLine = []byte("diff --git ")

// ParsePatch parses one raw RFC 2822 message (as produced by a Splitter)
// into a ParsedPatch.
func ParsePatch(raw []byte) (*ParsedPatch, error) {
	headers, body, err := splitHeaders(raw)
	if err != nil {
		return nil, err
	}

	name, email, err := parseFromHeader(headers["from"])
	if err != nil {
		return nil, err
	}

	if name == skipAuthorName {
		return &ParsedPatch{Skip: true}, nil
	}

	date := headers["date"]
	if date == "" {
		date = time.Now().Format(time.RFC1123Z)
	}

	subject := patchSubjectTag.ReplaceAllString(headers["subject"], "")
	message, diff := splitMessageAndDiff(body)

	commitMsg := subject
	if len(message) > 0 {
		commitMsg += "\n\n" + string(message)
	}
	commitMsg = strings.TrimRight(commitMsg, "\n") + "\n"

	return &ParsedPatch{
		AuthorName:  name,
		AuthorEmail: email,
		AuthorDate:  date,
		Message:     []byte(commitMsg),
		Diff:        diff,
		Empty:       len(bytes.TrimSpace(diff)) == 0,
	}, nil
}

// splitHeaders separates an RFC 2822 header block from its body and returns
// the headers lower-cased by field name, folding continuation lines.
func splitHeaders(raw []byte) (map[string]string, []byte, error) {
	headers := make(map[string]string)
	s := bufio.NewScanner(bytes.NewReader(raw))
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var lastKey string
	var body bytes.Buffer
	inBody := false

	for s.Scan() {
		line := s.Bytes()
		if inBody {
			body.Write(line)
			body.WriteByte('\n')
			continue
		}
		if len(line) == 0 {
			inBody = true
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && lastKey != "" {
			headers[lastKey] += " " + strings.TrimSpace(string(line))
			continue
		}
		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(string(line[:colon])))
		value := strings.TrimSpace(string(line[colon+1:]))
		headers[key] = value
		lastKey = key
	}
	if err := s.Err(); err != nil {
		return nil, nil, err
	}
	if headers["from"] == "" {
		return nil, nil, fmt.Errorf("missing From header")
	}
	return headers, body.Bytes(), nil
}

// parseFromHeader extracts a name/email pair from a "Name <email>" or bare
// "email" From header value.
func parseFromHeader(from string) (name, email string, err error) {
	if m := fromHeaderRE.FindStringSubmatch(from); m != nil {
		return strings.Trim(m[1], `"`), m[2], nil
	}
	if from == "" {
		return "", "", fmt.Errorf("empty From header")
	}
	return from, from, nil
}

// splitMessageAndDiff separates the commit message body from the unified
// diff that follows it. The diff begins at the first "diff --git " line; a
// trailing "---" separator line immediately before it (git's diffstat
// marker) is not part of the message.
func splitMessageAndDiff(body []byte) (message, diff []byte) {
	idx := bytes.Index(body, diffGitLine)
	if idx < 0 {
		return bytes.TrimRight(body, "\n"), nil
	}

	msgPart := body[:idx]
	diff = body[idx:]

	lines := bytes.Split(bytes.TrimRight(msgPart, "\n"), []byte("\n"))
	if len(lines) > 0 && bytes.Equal(bytes.TrimSpace(lines[len(lines)-1]), []byte("---")) {
		lines = lines[:len(lines)-1]
	}
	message = bytes.TrimRight(bytes.Join(lines, []byte("\n")), "\n")
	return message, diff
}
