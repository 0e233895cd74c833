package vcard

import (
	"bufio"
	"io"
	"strings"
)

// unfolder turns a raw byte stream into logical lines, merging folded
// continuation lines as defined in RFC 6350 section 3.2. Line terminators
// are CRLF or, leniently, a bare LF. A trailing line without a terminator
// is still emitted.
type unfolder struct {
	br     *bufio.Reader
	phys   int // physical lines consumed so far
	peeked *string
	err    error
}

func newUnfolder(r io.Reader) *unfolder {
	return &unfolder{br: bufio.NewReader(r)}
}

// readPhysical returns the next physical line with its terminator
// stripped, or io.EOF once the input is exhausted.
func (u *unfolder) readPhysical() (string, error) {
	if u.peeked != nil {
		s := *u.peeked
		u.peeked = nil
		return s, nil
	}
	if u.err != nil {
		return "", u.err
	}
	s, err := u.br.ReadString('\n')
	if err != nil {
		u.err = err
		if s == "" {
			return "", err
		}
	}
	u.phys++
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, nil
}

func (u *unfolder) peekPhysical() (string, bool) {
	if u.peeked == nil {
		s, err := u.readPhysical()
		if err != nil {
			return "", false
		}
		u.peeked = &s
	}
	return *u.peeked, true
}

// readLogical returns the next logical line and the physical line number
// it started on. A continuation line with no preceding logical line is an
// error; folding onto an empty line has nothing to continue.
func (u *unfolder) readLogical() (string, int, error) {
	s, err := u.readPhysical()
	if err != nil {
		return "", 0, err
	}
	line := u.phys
	if s != "" && (s[0] == ' ' || s[0] == '\t') {
		return "", line, &Error{Code: ErrIncorrectToken, Value: s, Line: line}
	}
	if s == "" {
		return "", line, nil
	}
	var sb strings.Builder
	sb.WriteString(s)
	for {
		next, ok := u.peekPhysical()
		if !ok || next == "" || (next[0] != ' ' && next[0] != '\t') {
			break
		}
		u.readPhysical()
		sb.WriteString(next[1:])
	}
	return sb.String(), line, nil
}
