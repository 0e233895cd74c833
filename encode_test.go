package vcard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSimpleCard(t *testing.T) {
	card := parseOne(t, "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:John Doe\r\nEND:VCARD\r\n")
	assert.Equal(t, "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:John Doe\r\nEND:VCARD\r\n", card.String())
}

func TestEncodeRoundTrip(t *testing.T) {
	inputs := []string{
		lines("FN:John Doe"),
		lines("FN:x", "N:Stevenson;John;Philip,Paul;Dr.;Jr.,M.D."),
		lines("FN:x", "ADR;LABEL=\"123 Main St\\nSpringfield\":;;123 Main St;Springfield;IL;62701;USA"),
		lines("FN:x", "TEL;TYPE=work,voice;PREF=1:tel:+15551234567"),
		lines("FN:x", "TEL;VALUE=text:555-1234"),
		lines("FN:x", "EMAIL:mailto:jdoe@example.com"),
		lines("FN:x", "BDAY:--0415"),
		lines("FN:x", "BDAY;VALUE=text:circa 1800"),
		lines("FN:x", "ANNIVERSARY:20090808T1430-0500"),
		lines("FN:x", "GENDER:M"),
		lines("FN:x", "KIND:group", "MEMBER:urn:uuid:abc", "MEMBER:urn:uuid:def"),
		lines("FN:x", "TZ;VALUE=utc-offset:-0500"),
		lines("FN:x", "TZ:America/New_York"),
		lines("FN:x", "GEO:geo:37.386013,-122.082932"),
		lines("FN:x", "LANG;PREF=1:fr", "LANG:en-US"),
		lines("FN:x", "REV:20230310T142233Z"),
		lines("FN:x", "UID:urn:uuid:f81d4fae-7dec-11d0-a765-00a0c91e6bf6"),
		lines("FN:x", "CLIENTPIDMAP:1;urn:uuid:53e374d9-337e-4727-8803-a1e9c14e0551"),
		lines("FN:x", "NOTE:line one\\nline two\\, done"),
		lines("FN:x", "CATEGORIES:work,friends"),
		lines("FN:x", "ORG:ABC\\, Inc.;North American Division;Marketing"),
		lines("FN:x", "X-SOCIAL-PROFILE;TYPE=home:https://example.com/p"),
		lines("FN:x", "X-KARMA;VALUE=integer:42"),
		lines("home.FN:John", "item1.EMAIL:mailto:jdoe@example.com"),
		lines("FN:x", "RELATED;TYPE=friend:urn:uuid:abc"),
		lines("FN;LANGUAGE=en;ALTID=1:x", "FN;LANGUAGE=fr;ALTID=1:y"),
		lines("FN;PID=1.1:x"),
	}
	for _, input := range inputs {
		first, err := ParseString(input)
		require.NoError(t, err, input)
		require.Len(t, first, 1)

		out := first[0].String()
		second, err := ParseString(out)
		require.NoError(t, err, out)
		require.Len(t, second, 1)
		assert.Equal(t, first[0], second[0], input)
	}
}

func TestEncodeIdempotent(t *testing.T) {
	input := lines(
		"FN:John Doe",
		"N:Doe;John;;;",
		"TEL;TYPE=work,voice;PREF=1:tel:+15551234567",
		"ADR;GEO=\"geo:37.386013,-122.082932\":;;123 Main St;Springfield;IL;62701;USA",
		"NOTE:first line\\nsecond line",
	)
	cards, err := ParseString(input)
	require.NoError(t, err)
	out1 := cards[0].String()

	cards2, err := ParseString(out1)
	require.NoError(t, err)
	assert.Equal(t, out1, cards2[0].String())
}

func TestEncodeEscaping(t *testing.T) {
	card := &Card{
		FormattedName: []TextProperty{{Value: "a,b;c\\d\ne"}},
	}
	out := card.String()
	assert.Contains(t, out, `FN:a\,b\;c\\d\ne`+"\r\n")

	reparsed, err := ParseString(out)
	require.NoError(t, err)
	assert.Equal(t, "a,b;c\\d\ne", reparsed[0].FormattedName[0].Value)
}

func TestEncodeFolding(t *testing.T) {
	long := strings.Repeat("all work and no play makes jack a dull boy ", 5)
	card := &Card{
		FormattedName: []TextProperty{{Value: "x"}},
		Note:          []TextProperty{{Value: long}},
	}
	out := card.String()
	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), maxLineOctets, "line %q", line)
	}

	reparsed, err := ParseString(out)
	require.NoError(t, err)
	require.Len(t, reparsed[0].Note, 1)
	assert.Equal(t, long, reparsed[0].Note[0].Value)
}

func TestEncodeFoldingRuneBoundary(t *testing.T) {
	// folding must not split multi-byte characters
	long := strings.Repeat("héllo wörld ", 12)
	card := &Card{
		FormattedName: []TextProperty{{Value: "x"}},
		Note:          []TextProperty{{Value: long}},
	}
	out := card.String()
	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), maxLineOctets)
		assert.True(t, strings.ToValidUTF8(line, "") == line, "line %q", line)
	}

	reparsed, err := ParseString(out)
	require.NoError(t, err)
	assert.Equal(t, long, reparsed[0].Note[0].Value)
}

func TestEncodeParameterRendering(t *testing.T) {
	card := parseOne(t, lines("FN:x", "TEL;TYPE=work,voice;PREF=1:tel:+15551234567"))
	assert.Contains(t, card.String(), "TEL;PREF=1;TYPE=work,voice:tel:+15551234567\r\n")
}

func TestEncodeQuotedParameterValue(t *testing.T) {
	card := parseOne(t, lines("FN:x", `ADR;GEO="geo:37.386013,-122.082932":;;;;;;`))
	out := card.String()
	assert.Contains(t, out, `GEO="geo:37.386013,-122.082932"`)

	reparsed, err := ParseString(out)
	require.NoError(t, err)
	require.NotNil(t, reparsed[0].Address[0].Params.Geo)
	assert.Equal(t, card.Address[0].Params.Geo.String(), reparsed[0].Address[0].Params.Geo.String())
}

func TestEncodeGroupPrefix(t *testing.T) {
	card := parseOne(t, lines("FN:x", "home.TEL:tel:+15551234567"))
	assert.Contains(t, card.String(), "home.TEL:tel:+15551234567\r\n")
}

func TestEncodeVersionFirst(t *testing.T) {
	card := parseOne(t, lines("NOTE:z", "FN:x", "KIND:individual"))
	out := strings.Split(card.String(), "\r\n")
	assert.Equal(t, "BEGIN:VCARD", out[0])
	assert.Equal(t, "VERSION:4.0", out[1])
	assert.Equal(t, "END:VCARD", out[len(out)-2])
}

func TestEncodeMultipleInstancesOrdered(t *testing.T) {
	card := parseOne(t, lines("FN:x",
		"EMAIL:mailto:a@example.com",
		"EMAIL:mailto:b@example.com",
		"EMAIL:mailto:c@example.com"))
	out := card.String()
	a := strings.Index(out, "a@example.com")
	b := strings.Index(out, "b@example.com")
	c := strings.Index(out, "c@example.com")
	assert.True(t, a < b && b < c)
}

func TestEncodeExtensionProperty(t *testing.T) {
	card := parseOne(t, lines("FN:x", "X-KARMA;VALUE=integer:42", "X-SERVICE;X-ACCOUNT=jdoe:twitter"))
	out := card.String()
	assert.Contains(t, out, "X-KARMA;VALUE=integer:42\r\n")
	assert.Contains(t, out, "X-SERVICE;X-ACCOUNT=jdoe:twitter\r\n")
}

func TestEncodeDateVariants(t *testing.T) {
	for _, bday := range []string{
		"BDAY:19850415",
		"BDAY:--0415",
		"BDAY:---15",
		"BDAY:1985-04",
		"BDAY:19850415T102200Z",
		"BDAY:T102200",
	} {
		card := parseOne(t, lines("FN:x", bday))
		assert.Contains(t, card.String(), bday+"\r\n", bday)
	}
}
