package vcard

import (
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// ValueType is the value of a VALUE parameter, selecting the value
// grammar of a property. It's defined in RFC 6350 section 5.2.
type ValueType string

const (
	ValueText          ValueType = "text"
	ValueURI           ValueType = "uri"
	ValueDate          ValueType = "date"
	ValueTime          ValueType = "time"
	ValueDateTime      ValueType = "date-time"
	ValueDateAndOrTime ValueType = "date-and-or-time"
	ValueTimestamp     ValueType = "timestamp"
	ValueBoolean       ValueType = "boolean"
	ValueInteger       ValueType = "integer"
	ValueFloat         ValueType = "float"
	ValueUTCOffset     ValueType = "utc-offset"
	ValueLanguageTag   ValueType = "language-tag"
)

// ParseValueType parses a VALUE parameter value, case-insensitively.
func ParseValueType(s string) (ValueType, error) {
	switch v := ValueType(strings.ToLower(s)); v {
	case ValueText, ValueURI, ValueDate, ValueTime, ValueDateTime,
		ValueDateAndOrTime, ValueTimestamp, ValueBoolean, ValueInteger,
		ValueFloat, ValueUTCOffset, ValueLanguageTag:
		return v, nil
	}
	return "", newError(ErrUnknownValueType, s)
}

// String formats the value type.
func (v ValueType) String() string {
	return string(v)
}

// TimeZoneParam is the value of a TZ parameter, either free text or a
// UTC offset.
type TimeZoneParam struct {
	Text   string
	Offset *UTCOffset
}

// String formats the parameter value.
func (t TimeZoneParam) String() string {
	if t.Offset != nil {
		return t.Offset.String()
	}
	return t.Text
}

// Params holds the well-known parameters of a property as typed fields.
// Zero values mean the parameter is absent; extension parameters with an
// X- prefix live in the Extensions side map keyed by upper-case name.
type Params struct {
	// Language is the LANGUAGE parameter.
	Language language.Tag
	// Value is the VALUE parameter, selecting a variant of a property
	// whose value may take several types.
	Value ValueType
	// Pref is the PREF parameter, 1..100; zero when absent.
	Pref int
	// AltID is the ALTID parameter.
	AltID string
	// PIDs is the PID parameter value list.
	PIDs []PID
	// Types is the TYPE parameter value list.
	Types []string
	// MediaType is the MEDIATYPE parameter.
	MediaType string
	// CalScale is the CALSCALE parameter.
	CalScale string
	// SortAs is the SORT-AS parameter value list.
	SortAs []string
	// Geo is the GEO parameter URI.
	Geo *url.URL
	// TZ is the TZ parameter.
	TZ *TimeZoneParam
	// Label is the LABEL parameter; only valid on ADR.
	Label string
	// CC is the ISO 3166 two-letter country code parameter.
	CC string
	// Index is the INDEX parameter (RFC 6715); zero when absent.
	Index int
	// Level is the LEVEL parameter (RFC 6715).
	Level string
	// Charset is the CHARSET parameter; only UTF-8 is accepted.
	Charset string
	// Extensions holds X- parameters.
	Extensions map[string][]string
}

// Empty reports whether no parameter is set.
func (p *Params) Empty() bool {
	return p.Language == language.Tag{} && p.Value == "" && p.Pref == 0 &&
		p.AltID == "" && len(p.PIDs) == 0 && len(p.Types) == 0 &&
		p.MediaType == "" && p.CalScale == "" && len(p.SortAs) == 0 &&
		p.Geo == nil && p.TZ == nil && p.Label == "" && p.CC == "" &&
		p.Index == 0 && p.Level == "" && p.Charset == "" &&
		len(p.Extensions) == 0
}

// HasType reports whether the TYPE parameter contains the given value,
// case-insensitively.
func (p *Params) HasType(t string) bool {
	for _, v := range p.Types {
		if strings.EqualFold(v, t) {
			return true
		}
	}
	return false
}
