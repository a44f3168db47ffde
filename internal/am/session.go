package am

import "fmt"

// defaultPrec is the zero-padding width for per-patch file names
// (spec.md §3: prec = 4, e.g. "0001").
const defaultPrec = 4

// Session is the in-memory view of an am session loaded from (or about to
// be written to) a SessionDir: the patch cursor, the queue bounds, and the
// current patch's author identity and composed commit message.
type Session struct {
	dir  *SessionDir
	cur  int
	last int
	prec int

	authorName  string
	authorEmail string
	authorDate  string

	msg []byte
}

// NewSession returns a fresh Session bound to dir, with the patch queue
// spanning [1, last].
func NewSession(dir *SessionDir, last int) *Session {
	return &Session{dir: dir, cur: 1, last: last, prec: defaultPrec}
}

// Dir returns the session's backing SessionDir.
func (s *Session) Dir() *SessionDir { return s.dir }

// Cur returns the current patch cursor (invariant I2: 1 <= cur <= last+1).
func (s *Session) Cur() int { return s.cur }

// Last returns the total number of patches in the queue.
func (s *Session) Last() int { return s.last }

// Remaining returns the number of patches not yet applied.
func (s *Session) Remaining() int {
	if s.cur > s.last {
		return 0
	}
	return s.last - s.cur + 1
}

// Done reports whether every patch in the queue has been applied.
func (s *Session) Done() bool { return s.cur > s.last }

// Advance moves the cursor to the next patch.
func (s *Session) Advance() { s.cur++ }

// SetAuthor records the author identity extracted from the current patch.
func (s *Session) SetAuthor(name, email, date string) {
	s.authorName = name
	s.authorEmail = email
	s.authorDate = date
}

// Author returns the author identity recorded for the current patch.
func (s *Session) Author() (name, email, date string) {
	return s.authorName, s.authorEmail, s.authorDate
}

// SetMessage records the composed commit message for the current patch.
func (s *Session) SetMessage(msg []byte) { s.msg = msg }

// Message returns the composed commit message for the current patch.
func (s *Session) Message() []byte { return s.msg }

// CurPatchFile returns the zero-padded file name for the current patch,
// e.g. "0003".
func (s *Session) CurPatchFile() string {
	return PatchFileName(s.cur, s.prec)
}

// PatchFile returns the zero-padded file name for patch number n.
func (s *Session) PatchFile(n int) string {
	return PatchFileName(n, s.prec)
}

// String renders a short progress summary, e.g. "3/7".
func (s *Session) String() string {
	return fmt.Sprintf("%d/%d", s.cur, s.last)
}
