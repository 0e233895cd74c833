package vcard

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAllLogical(t *testing.T, s string) []string {
	t.Helper()
	u := newUnfolder(strings.NewReader(s))
	var lines []string
	for {
		line, _, err := u.readLogical()
		if err == io.EOF {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, line)
	}
}

func TestUnfoldContinuation(t *testing.T) {
	lines := readAllLogical(t, "FN:John\r\n  Doe\r\n")
	assert.Equal(t, []string{"FN:John Doe"}, lines)
}

func TestUnfoldConsumesLeadingOctet(t *testing.T) {
	// only the first white-space octet marks the continuation; it is
	// removed and the rest of the line is content
	lines := readAllLogical(t, "FN:John\r\n Doe\r\n")
	assert.Equal(t, []string{"FN:JohnDoe"}, lines)
}

func TestUnfoldTabContinuation(t *testing.T) {
	lines := readAllLogical(t, "FN:John\r\n\t Doe\r\n")
	assert.Equal(t, []string{"FN:John Doe"}, lines)

	lines = readAllLogical(t, "FN:John\r\n\tDoe\r\n")
	assert.Equal(t, []string{"FN:JohnDoe"}, lines)
}

func TestUnfoldBareLF(t *testing.T) {
	lines := readAllLogical(t, "FN:John\n  Doe\nNOTE:x\n")
	assert.Equal(t, []string{"FN:John Doe", "NOTE:x"}, lines)
}

func TestUnfoldMultipleContinuations(t *testing.T) {
	lines := readAllLogical(t, "FN:Jo\r\n hn \r\n Doe\r\n")
	assert.Equal(t, []string{"FN:John Doe"}, lines)
}

func TestUnfoldTrailingLineWithoutTerminator(t *testing.T) {
	lines := readAllLogical(t, "FN:John\r\nNOTE:x")
	assert.Equal(t, []string{"FN:John", "NOTE:x"}, lines)
}

func TestUnfoldLeadingContinuation(t *testing.T) {
	u := newUnfolder(strings.NewReader(" FN:John\r\n"))
	_, _, err := u.readLogical()
	require.Error(t, err)
	assert.True(t, errors.Is(err, &Error{Code: ErrIncorrectToken}))
}

func TestUnfoldLineNumbers(t *testing.T) {
	u := newUnfolder(strings.NewReader("FN:Jo\r\n hn\r\nNOTE:x\r\n"))

	line, ln, err := u.readLogical()
	require.NoError(t, err)
	assert.Equal(t, "FN:John", line)
	assert.Equal(t, 1, ln)

	line, ln, err = u.readLogical()
	require.NoError(t, err)
	assert.Equal(t, "NOTE:x", line)
	assert.Equal(t, 3, ln)
}

func TestUnfoldEmptyLines(t *testing.T) {
	lines := readAllLogical(t, "\r\nFN:John\r\n\r\n")
	assert.Equal(t, []string{"", "FN:John", ""}, lines)
}
