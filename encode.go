package vcard

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
)

// maxLineOctets is the maximum content-line length before folding,
// excluding the line break. See RFC 6350 section 3.2.
const maxLineOctets = 75

// Encode writes the card as vCard 4.0 text. Properties are rendered in a
// fixed canonical order with VERSION first; the order of instances of a
// multi-valued property is preserved. The output round-trips through
// Parse.
func (c *Card) Encode(w io.Writer) error {
	e := &encoder{w: w}
	e.line("BEGIN:VCARD")
	e.line("VERSION:4.0")
	if c.Kind != nil {
		e.prop(c.Kind.Group, "KIND", &c.Kind.Params, c.Kind.Value.String())
	}
	for i := range c.FormattedName {
		p := &c.FormattedName[i]
		e.prop(p.Group, "FN", &p.Params, escapeText(p.Value))
	}
	if c.Name != nil {
		e.prop(c.Name.Group, "N", &c.Name.Params, c.Name.Value.String())
	}
	for i := range c.Nickname {
		p := &c.Nickname[i]
		e.prop(p.Group, "NICKNAME", &p.Params, escapeList(p.Value))
	}
	e.uris("PHOTO", c.Photo)
	if c.Birthday != nil {
		e.prop(c.Birthday.Group(), "BDAY", c.Birthday.Params(), c.Birthday.encoded())
	}
	if c.Anniversary != nil {
		e.prop(c.Anniversary.Group(), "ANNIVERSARY", c.Anniversary.Params(), c.Anniversary.encoded())
	}
	if c.Gender != nil {
		e.prop(c.Gender.Group, "GENDER", &c.Gender.Params, c.Gender.Value.String())
	}
	for i := range c.Address {
		p := &c.Address[i]
		e.prop(p.Group, "ADR", &p.Params, p.Value.String())
	}
	for i := range c.Tel {
		p := &c.Tel[i]
		e.prop(p.Group(), "TEL", p.Params(), p.encoded())
	}
	e.uris("EMAIL", c.Email)
	e.uris("IMPP", c.IMPP)
	for i := range c.Lang {
		p := &c.Lang[i]
		e.prop(p.Group, "LANG", &p.Params, p.Value.String())
	}
	for i := range c.TimeZone {
		p := &c.TimeZone[i]
		e.prop(p.Group(), "TZ", p.Params(), p.encoded())
	}
	e.uris("GEO", c.Geo)
	e.texts("TITLE", c.Title)
	e.texts("ROLE", c.Role)
	e.uris("LOGO", c.Logo)
	for i := range c.Org {
		p := &c.Org[i]
		e.prop(p.Group, "ORG", &p.Params, escapeList(p.Value))
	}
	e.uris("MEMBER", c.Member)
	for i := range c.Related {
		p := &c.Related[i]
		e.prop(p.Group(), "RELATED", p.Params(), p.encoded())
	}
	for i := range c.Categories {
		p := &c.Categories[i]
		e.prop(p.Group, "CATEGORIES", &p.Params, escapeList(p.Value))
	}
	e.texts("NOTE", c.Note)
	if c.ProdID != nil {
		e.prop(c.ProdID.Group, "PRODID", &c.ProdID.Params, escapeText(c.ProdID.Value))
	}
	if c.Rev != nil {
		e.prop(c.Rev.Group, "REV", &c.Rev.Params, FormatTimestamp(c.Rev.Value))
	}
	e.uris("SOUND", c.Sound)
	if c.UID != nil {
		e.prop(c.UID.Group(), "UID", c.UID.Params(), c.UID.encoded())
	}
	for i := range c.ClientPidMap {
		p := &c.ClientPidMap[i]
		e.prop(p.Group, "CLIENTPIDMAP", &p.Params, p.Value.String())
	}
	e.uris("URL", c.URL)
	e.uris("SOURCE", c.Source)
	e.texts("XML", c.XML)
	e.uris("FBURL", c.FBURL)
	e.uris("CALADRURI", c.CalAdrURI)
	e.uris("CALURI", c.CalURI)
	e.uris("KEY", c.Key)
	for i := range c.Extensions {
		p := &c.Extensions[i]
		e.prop(p.Group, p.Name, &p.Params, p.Value.encoded())
	}
	e.line("END:VCARD")
	return e.err
}

// String renders the card as vCard 4.0 text.
func (c *Card) String() string {
	var sb strings.Builder
	c.Encode(&sb)
	return sb.String()
}

// encoded renders the wire value of whichever variant is set. The VALUE
// parameter kept on the property makes the variant survive a reparse.
func (p *TextOrURIProperty) encoded() string {
	if p.Text != nil {
		return escapeText(p.Text.Value)
	}
	return p.URI.Value.String()
}

func (p *DateAndOrTimeOrTextProperty) encoded() string {
	if p.Text != nil {
		return escapeText(p.Text.Value)
	}
	return p.DateAndOrTime.Value.String()
}

func (p *TimeZoneProperty) encoded() string {
	switch {
	case p.Text != nil:
		return escapeText(p.Text.Value)
	case p.URI != nil:
		return p.URI.Value.String()
	default:
		return p.Offset.Value.String()
	}
}

func (v *AnyValue) encoded() string {
	switch v.Kind {
	case ValueInteger:
		return strconv.FormatInt(v.Integer, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case ValueBoolean:
		if v.Boolean {
			return "TRUE"
		}
		return "FALSE"
	case ValueDate:
		return v.Date.String()
	case ValueTime:
		return v.Time.String()
	case ValueDateTime:
		return v.DateTime.String()
	case ValueDateAndOrTime:
		return v.DateAndOrTime.String()
	case ValueTimestamp:
		return FormatTimestamp(v.Timestamp)
	case ValueURI:
		return v.URI.String()
	case ValueUTCOffset:
		return v.UTCOffset.String()
	case ValueLanguageTag:
		return v.Language.String()
	default:
		return escapeText(v.Text)
	}
}

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) uris(name string, props []URIProperty) {
	for i := range props {
		p := &props[i]
		e.prop(p.Group, name, &p.Params, p.Value.String())
	}
}

func (e *encoder) texts(name string, props []TextProperty) {
	for i := range props {
		p := &props[i]
		e.prop(p.Group, name, &p.Params, escapeText(p.Value))
	}
}

func (e *encoder) prop(group, name string, params *Params, value string) {
	var sb strings.Builder
	if group != "" {
		sb.WriteString(group)
		sb.WriteByte('.')
	}
	sb.WriteString(name)
	encodeParams(&sb, params)
	sb.WriteByte(':')
	sb.WriteString(value)
	e.line(sb.String())
}

// line folds and writes a single content line followed by CRLF. Folding
// is the only place the encoder introduces line breaks not present in
// the value.
func (e *encoder) line(s string) {
	if e.err != nil {
		return
	}
	// the leading SPACE of a continuation line counts toward the limit
	limit := maxLineOctets
	for len(s) > limit {
		cut := limit
		// never split inside a UTF-8 sequence
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if _, err := io.WriteString(e.w, s[:cut]+"\r\n "); err != nil {
			e.err = err
			return
		}
		s = s[cut:]
		limit = maxLineOctets - 1
	}
	if _, err := io.WriteString(e.w, s+"\r\n"); err != nil {
		e.err = err
	}
}

func encodeParams(sb *strings.Builder, params *Params) {
	if params == nil || params.Empty() {
		return
	}
	if params.Language != (language.Tag{}) {
		writeParam(sb, "LANGUAGE", params.Language.String())
	}
	if params.Value != "" {
		writeParam(sb, "VALUE", string(params.Value))
	}
	if params.Pref != 0 {
		writeParam(sb, "PREF", strconv.Itoa(params.Pref))
	}
	if params.AltID != "" {
		writeParam(sb, "ALTID", params.AltID)
	}
	if len(params.PIDs) > 0 {
		vals := make([]string, len(params.PIDs))
		for i, pid := range params.PIDs {
			vals[i] = pid.String()
		}
		writeParamList(sb, "PID", vals)
	}
	if len(params.Types) > 0 {
		writeParamList(sb, "TYPE", params.Types)
	}
	if params.MediaType != "" {
		writeParam(sb, "MEDIATYPE", params.MediaType)
	}
	if params.CalScale != "" {
		writeParam(sb, "CALSCALE", params.CalScale)
	}
	if len(params.SortAs) > 0 {
		writeParamList(sb, "SORT-AS", params.SortAs)
	}
	if params.Geo != nil {
		sb.WriteString(";GEO=\"")
		sb.WriteString(params.Geo.String())
		sb.WriteString("\"")
	}
	if params.TZ != nil {
		writeParam(sb, "TZ", params.TZ.String())
	}
	if params.Label != "" {
		writeParam(sb, "LABEL", escapeText(params.Label))
	}
	if params.CC != "" {
		writeParam(sb, "CC", params.CC)
	}
	if params.Index != 0 {
		writeParam(sb, "INDEX", strconv.Itoa(params.Index))
	}
	if params.Level != "" {
		writeParam(sb, "LEVEL", params.Level)
	}
	if params.Charset != "" {
		writeParam(sb, "CHARSET", params.Charset)
	}
	if len(params.Extensions) > 0 {
		names := make([]string, 0, len(params.Extensions))
		for name := range params.Extensions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			writeParamList(sb, name, params.Extensions[name])
		}
	}
}

func writeParam(sb *strings.Builder, name, value string) {
	writeParamList(sb, name, []string{value})
}

func writeParamList(sb *strings.Builder, name string, values []string) {
	sb.WriteByte(';')
	sb.WriteString(name)
	sb.WriteByte('=')
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(',')
		}
		if strings.ContainsAny(v, ";:,") {
			sb.WriteByte('"')
			sb.WriteString(v)
			sb.WriteByte('"')
		} else {
			sb.WriteString(v)
		}
	}
}
