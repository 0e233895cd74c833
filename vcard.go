// Package vcard implements the vCard 4.0 electronic business card
// format.
//
// vCard 4.0 is defined in RFC 6350. Parse reads one or more cards from
// UTF-8 text and Card.Encode writes them back out; the output of Encode
// round-trips through Parse.
package vcard

import (
	"io"
	"strings"
)

// Parse reads zero or more vCards from r. It fails fast: the first
// violation aborts the parse and no cards are returned.
func Parse(r io.Reader) ([]*Card, error) {
	p := &parser{u: newUnfolder(r)}
	return p.parseAll()
}

// ParseString is like Parse but reads from a string.
func ParseString(s string) ([]*Card, error) {
	return Parse(strings.NewReader(s))
}
