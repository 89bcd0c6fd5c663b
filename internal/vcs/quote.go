package vcs

import (
	"errors"
	"strconv"
	"strings"
)

// ErrBadQuote is returned for a malformed C-style quoted path.
var ErrBadQuote = errors.New("malformed quoted path")

// SplitQuoted splits a leading C-style quoted path off s, as git prints
// paths containing spaces, quotes, control or non-ASCII characters. It
// returns the unquoted path and the remainder after the closing quote.
func SplitQuoted(s string) (path, rest string, err error) {
	if !strings.HasPrefix(s, `"`) {
		return "", s, ErrBadQuote
	}
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			path, err := strconv.Unquote(s[:i+1])
			if err != nil {
				return "", s, ErrBadQuote
			}
			return path, s[i+1:], nil
		}
	}
	return "", s, ErrBadQuote
}

// UnquotePath returns p unquoted if it is a C-style quoted path, or p
// unchanged otherwise.
func UnquotePath(p string) (string, error) {
	if !strings.HasPrefix(p, `"`) {
		return p, nil
	}
	path, rest, err := SplitQuoted(p)
	if err != nil {
		return "", err
	}
	if rest != "" {
		return "", ErrBadQuote
	}
	return path, nil
}

// QuotePath quotes p the way git does when it contains characters that are
// not safe to print bare. Paths that need no quoting are returned unchanged.
func QuotePath(p string) string {
	needs := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c < 0x20 || c == '"' || c == '\\' || c >= 0x7f {
			needs = true
			break
		}
	}
	if !needs {
		return p
	}

	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch c {
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\v':
			b.WriteString(`\v`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			if c < 0x20 || c >= 0x7f {
				b.WriteByte('\\')
				b.WriteByte('0' + c>>6)
				b.WriteByte('0' + (c>>3)&7)
				b.WriteByte('0' + c&7)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
