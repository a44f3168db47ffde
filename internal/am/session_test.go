package am

import "testing"

func TestSessionAdvanceAndDone(t *testing.T) {
	dir, err := Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	s := NewSession(dir, 3)

	if s.Done() {
		t.Fatalf("Done() = true at start")
	}
	if s.Remaining() != 3 {
		t.Errorf("Remaining() = %d, want 3", s.Remaining())
	}
	if s.CurPatchFile() != "0001" {
		t.Errorf("CurPatchFile() = %q, want '0001'", s.CurPatchFile())
	}

	s.Advance()
	s.Advance()
	s.Advance()

	if !s.Done() {
		t.Errorf("Done() = false after advancing past last patch")
	}
	if s.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", s.Remaining())
	}
}

func TestSessionAuthorAndMessage(t *testing.T) {
	dir, err := Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	s := NewSession(dir, 1)

	s.SetAuthor("Jane Doe", "jane@example.com", "Mon, 1 Jan 2024 00:00:00 +0000")
	name, email, date := s.Author()
	if name != "Jane Doe" || email != "jane@example.com" || date != "Mon, 1 Jan 2024 00:00:00 +0000" {
		t.Errorf("Author() = (%q, %q, %q)", name, email, date)
	}

	s.SetMessage([]byte("a commit message\n"))
	if string(s.Message()) != "a commit message\n" {
		t.Errorf("Message() = %q", s.Message())
	}
}
