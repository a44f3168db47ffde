package repo

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Signature identifies the author or committer of a commit, in the
// "Name <email> unixts tz" form a commit object encodes.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// String renders the signature in its on-disk form.
func (s Signature) String() string {
	_, offset := s.When.Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("%s <%s> %d %c%02d%02d",
		s.Name, s.Email, s.When.Unix(), sign, offset/3600, (offset%3600)/60)
}

// ParseSignature parses the "Name <email> unixts tz" form back into a
// Signature.
func ParseSignature(line string) (Signature, error) {
	open := strings.LastIndex(line, "<")
	close := strings.LastIndex(line, ">")
	if open < 0 || close < open {
		return Signature{}, fmt.Errorf("malformed signature %q", line)
	}
	name := strings.TrimSpace(line[:open])
	email := line[open+1 : close]

	rest := strings.Fields(line[close+1:])
	if len(rest) < 2 {
		return Signature{}, fmt.Errorf("malformed signature %q: missing timestamp/tz", line)
	}
	unixTS, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("malformed signature %q: %w", line, err)
	}
	loc, err := parseTZOffset(rest[1])
	if err != nil {
		return Signature{}, fmt.Errorf("malformed signature %q: %w", line, err)
	}
	return Signature{Name: name, Email: email, When: time.Unix(unixTS, 0).In(loc)}, nil
}

func parseTZOffset(tz string) (*time.Location, error) {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return nil, fmt.Errorf("invalid tz offset %q", tz)
	}
	hh, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return nil, err
	}
	mm, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return nil, err
	}
	offset := hh*3600 + mm*60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(tz, offset), nil
}

// Commit is a content-addressed commit object: a tree, zero or more
// parents, an author and committer signature, and a message.
type Commit struct {
	Tree    string
	Parents []string
	Author  Signature
	Commit  Signature
	Message string
}

// Encode writes the commit in its on-disk text form.
func (c Commit) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "tree %s\n", c.Tree)
	for _, p := range c.Parents {
		fmt.Fprintf(bw, "parent %s\n", p)
	}
	fmt.Fprintf(bw, "author %s\n", c.Author.String())
	fmt.Fprintf(bw, "committer %s\n", c.Commit.String())
	fmt.Fprintf(bw, "\n%s", c.Message)
	return bw.Flush()
}

// DecodeCommit parses a commit object's on-disk text form.
func DecodeCommit(data []byte) (Commit, error) {
	var c Commit
	s := bufio.NewScanner(bytes.NewReader(data))
	s.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for s.Scan() {
		line := s.Text()
		if line == "" {
			break
		}
		switch {
		case strings.HasPrefix(line, "tree "):
			c.Tree = strings.TrimPrefix(line, "tree ")
		case strings.HasPrefix(line, "parent "):
			c.Parents = append(c.Parents, strings.TrimPrefix(line, "parent "))
		case strings.HasPrefix(line, "author "):
			sig, err := ParseSignature(strings.TrimPrefix(line, "author "))
			if err != nil {
				return Commit{}, err
			}
			c.Author = sig
		case strings.HasPrefix(line, "committer "):
			sig, err := ParseSignature(strings.TrimPrefix(line, "committer "))
			if err != nil {
				return Commit{}, err
			}
			c.Commit = sig
		default:
			return Commit{}, fmt.Errorf("unexpected commit header line %q", line)
		}
	}
	if err := s.Err(); err != nil {
		return Commit{}, err
	}

	var msg bytes.Buffer
	for s.Scan() {
		msg.Write(s.Bytes())
		msg.WriteByte('\n')
	}
	c.Message = msg.String()
	return c, nil
}
