package am

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeAuthorScriptRoundTrip(t *testing.T) {
	cases := []struct {
		name, author, email, date string
	}{
		{"plain", "Jane Doe", "jane@example.com", "1700000000 -0500"},
		{"embedded quote", "O'Brien", "obrien@example.com", "1700000000 +0000"},
		{"multiple quotes", "'quoted' author's name", "a@b.com", "1700000000 +0000"},
		{"empty email domain-less", "CI Bot", "", "1700000000 +0000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			script := EncodeAuthorScript(tc.author, tc.email, tc.date)
			name, email, date, err := DecodeAuthorScript(script)
			if err != nil {
				t.Fatalf("DecodeAuthorScript() error = %v", err)
			}
			if name != tc.author {
				t.Errorf("name = %q, want %q", name, tc.author)
			}
			if email != tc.email {
				t.Errorf("email = %q, want %q", email, tc.email)
			}
			if date != tc.date {
				t.Errorf("date = %q, want %q", date, tc.date)
			}
		})
	}
}

func TestEncodeAuthorScriptFixedOrder(t *testing.T) {
	script := string(EncodeAuthorScript("Jane Doe", "jane@example.com", "1700000000 -0500"))
	lines := strings.Split(strings.TrimRight(script, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), script)
	}
	if !strings.HasPrefix(lines[0], "GIT_AUTHOR_NAME=") {
		t.Errorf("line 0 = %q, want GIT_AUTHOR_NAME=...", lines[0])
	}
	if !strings.HasPrefix(lines[1], "GIT_AUTHOR_EMAIL=") {
		t.Errorf("line 1 = %q, want GIT_AUTHOR_EMAIL=...", lines[1])
	}
	if !strings.HasPrefix(lines[2], "GIT_AUTHOR_DATE=") {
		t.Errorf("line 2 = %q, want GIT_AUTHOR_DATE=...", lines[2])
	}
}

func TestDecodeAuthorScriptRejectsWrongOrder(t *testing.T) {
	data := []byte("GIT_AUTHOR_EMAIL='jane@example.com'\nGIT_AUTHOR_NAME='Jane Doe'\nGIT_AUTHOR_DATE='1700000000 +0000'\n")
	_, _, _, err := DecodeAuthorScript(data)
	if !errors.Is(err, ErrMalformedAuthorScript) {
		t.Errorf("error = %v, want ErrMalformedAuthorScript", err)
	}
}

func TestDecodeAuthorScriptRejectsMissingLine(t *testing.T) {
	data := []byte("GIT_AUTHOR_NAME='Jane Doe'\nGIT_AUTHOR_EMAIL='jane@example.com'\n")
	_, _, _, err := DecodeAuthorScript(data)
	if !errors.Is(err, ErrMalformedAuthorScript) {
		t.Errorf("error = %v, want ErrMalformedAuthorScript", err)
	}
}

func TestDecodeAuthorScriptRejectsTrailingData(t *testing.T) {
	data := []byte("GIT_AUTHOR_NAME='Jane Doe'\nGIT_AUTHOR_EMAIL='jane@example.com'\nGIT_AUTHOR_DATE='1700000000 +0000'\nextra garbage\n")
	_, _, _, err := DecodeAuthorScript(data)
	if !errors.Is(err, ErrMalformedAuthorScript) {
		t.Errorf("error = %v, want ErrMalformedAuthorScript", err)
	}
}

func TestDecodeAuthorScriptRejectsUnquotedValue(t *testing.T) {
	data := []byte("GIT_AUTHOR_NAME=Jane Doe\nGIT_AUTHOR_EMAIL='jane@example.com'\nGIT_AUTHOR_DATE='1700000000 +0000'\n")
	_, _, _, err := DecodeAuthorScript(data)
	if !errors.Is(err, ErrMalformedAuthorScript) {
		t.Errorf("error = %v, want ErrMalformedAuthorScript", err)
	}
}

func TestShellQuoteUnquoteRoundTrip(t *testing.T) {
	inputs := []string{"", "plain", "O'Brien", "''''", "a 'b' c"}
	for _, in := range inputs {
		quoted := shellQuote(in)
		got, err := shellUnquote(quoted)
		if err != nil {
			t.Fatalf("shellUnquote(%q) error = %v", quoted, err)
		}
		if got != in {
			t.Errorf("round trip %q -> %q -> %q", in, quoted, got)
		}
	}
}
