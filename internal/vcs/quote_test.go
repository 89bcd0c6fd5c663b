package vcs

import (
	"errors"
	"testing"
)

func TestSplitQuoted(t *testing.T) {
	tests := []struct {
		in       string
		wantPath string
		wantRest string
	}{
		{`"a b" -> x`, "a b", " -> x"},
		{`"say \"hi\""`, `say "hi"`, ""},
		{`"caf\303\251"`, "café", ""},
		{`"back\\slash" tail`, `back\slash`, " tail"},
	}
	for _, tt := range tests {
		path, rest, err := SplitQuoted(tt.in)
		if err != nil {
			t.Errorf("SplitQuoted(%q) error: %v", tt.in, err)
			continue
		}
		if path != tt.wantPath || rest != tt.wantRest {
			t.Errorf("SplitQuoted(%q) = %q, %q; want %q, %q", tt.in, path, rest, tt.wantPath, tt.wantRest)
		}
	}

	for _, bad := range []string{`plain`, `"unterminated`, `"bad \q escape"`} {
		if _, _, err := SplitQuoted(bad); !errors.Is(err, ErrBadQuote) {
			t.Errorf("SplitQuoted(%q) err = %v, want ErrBadQuote", bad, err)
		}
	}
}

func TestUnquotePath(t *testing.T) {
	got, err := UnquotePath("plain/path.go")
	if err != nil || got != "plain/path.go" {
		t.Errorf("UnquotePath(plain) = %q, %v", got, err)
	}

	got, err = UnquotePath(`"new\nline"`)
	if err != nil || got != "new\nline" {
		t.Errorf("UnquotePath(quoted) = %q, %v", got, err)
	}

	if _, err := UnquotePath(`"a" trailing`); !errors.Is(err, ErrBadQuote) {
		t.Errorf("UnquotePath with trailing text err = %v, want ErrBadQuote", err)
	}
}

func TestQuotePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"simple.go", "simple.go"},
		{"with space.go", "with space.go"},
		{"tab\there", `"tab\there"`},
		{`quo"te`, `"quo\"te"`},
		{"café", `"caf\303\251"`},
		{"\x01", `"\001"`},
	}
	for _, tt := range tests {
		if got := QuotePath(tt.in); got != tt.want {
			t.Errorf("QuotePath(%q) = %s, want %s", tt.in, got, tt.want)
		}
		back, err := UnquotePath(QuotePath(tt.in))
		if err != nil || back != tt.in {
			t.Errorf("UnquotePath(QuotePath(%q)) = %q, %v", tt.in, back, err)
		}
	}
}
