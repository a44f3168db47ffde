package am

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/infodancer/msgstore"
	_ "github.com/infodancer/msgstore/maildir" // registers the "maildir" store backend
)

// Splitter is the Mail Splitter Driver (spec.md §4.4): it turns one or more
// mailbox-format inputs into an ordered slice of raw, unparsed messages, one
// per patch.
type Splitter interface {
	Split(ctx context.Context, paths []string) ([][]byte, error)
}

// NewSplitter returns the Splitter for format.
func NewSplitter(format PatchFormat) (Splitter, error) {
	switch format {
	case FormatMbox:
		return mboxSplitter{}, nil
	case FormatMaildir:
		return maildirSplitter{}, nil
	default:
		return nil, fmt.Errorf("%w: unrecognized format %q", ErrUnknownFormat, format)
	}
}

// mboxSplitter splits one or more mbox files on "From " envelope lines.
// A file with no envelope line at all is treated as a single message
// (spec.md §4.3's RFC-2822 fallback).
type mboxSplitter struct{}

func (mboxSplitter) Split(ctx context.Context, paths []string) ([][]byte, error) {
	var patches [][]byte
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		patches = append(patches, splitMbox(data)...)
	}
	return patches, nil
}

func splitMbox(data []byte) [][]byte {
	var patches [][]byte
	var cur bytes.Buffer
	started := false

	flush := func() {
		if started && cur.Len() > 0 {
			patches = append(patches, append([]byte(nil), cur.Bytes()...))
		}
		cur.Reset()
	}

	s := bufio.NewScanner(bytes.NewReader(data))
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for s.Scan() {
		line := s.Text()
		if bytes.HasPrefix([]byte(line), []byte("From ")) {
			flush()
			started = true
			continue
		}
		if !started {
			// No envelope line at the top: treat the whole file as one
			// RFC 2822 message.
			started = true
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
	}
	flush()
	return patches
}

// maildirSplitter reads every message out of a Maildir, oldest first, using
// the shared msgstore abstraction the way the teacher's POP3 sessions list
// and retrieve messages by UID.
type maildirSplitter struct{}

func (maildirSplitter) Split(ctx context.Context, paths []string) ([][]byte, error) {
	var patches [][]byte
	for _, path := range paths {
		store, err := msgstore.Open(msgstore.StoreConfig{
			Type:     "maildir",
			BasePath: path,
		})
		if err != nil {
			return nil, fmt.Errorf("opening maildir %s: %w", path, err)
		}

		infos, err := store.List(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("listing maildir %s: %w", path, err)
		}
		sort.Slice(infos, func(i, j int) bool { return infos[i].UID < infos[j].UID })

		for _, info := range infos {
			rc, err := store.Retrieve(ctx, "", info.UID)
			if err != nil {
				return nil, fmt.Errorf("retrieving %s/%s: %w", path, info.UID, err)
			}
			data, err := io.ReadAll(rc)
			_ = rc.Close()
			if err != nil {
				return nil, fmt.Errorf("reading %s/%s: %w", path, info.UID, err)
			}
			patches = append(patches, data)
		}

		if c, ok := store.(io.Closer); ok {
			_ = c.Close()
		}
	}
	return patches, nil
}
