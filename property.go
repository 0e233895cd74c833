package vcard

import (
	"net/url"
	"time"

	"golang.org/x/text/language"
)

// Prop is the common shell of every vCard property: an optional group,
// a typed value and a parameter set.
type Prop[V any] struct {
	// Group is the optional case-insensitive group identifier that
	// dot-prefixes the property name.
	Group string
	// Value is the typed property value.
	Value V
	// Params holds the property parameters.
	Params Params
}

// Property shells for each value kind.
type (
	TextProperty          = Prop[string]
	TextListProperty      = Prop[[]string]
	URIProperty           = Prop[*url.URL]
	IntegerProperty       = Prop[int64]
	FloatProperty         = Prop[float64]
	BooleanProperty       = Prop[bool]
	DateAndOrTimeProperty = Prop[DateAndOrTime]
	TimestampProperty     = Prop[time.Time]
	UTCOffsetProperty     = Prop[UTCOffset]
	LanguageProperty      = Prop[language.Tag]
	KindProperty          = Prop[Kind]
	GenderProperty        = Prop[Gender]
	NameProperty          = Prop[Name]
	AddressProperty       = Prop[DeliveryAddress]
	ClientPidMapProperty  = Prop[ClientPidMap]
)

// TextOrURIProperty is a property whose value is either text or a URI,
// selected by the VALUE parameter. Exactly one field is non-nil.
type TextOrURIProperty struct {
	Text *TextProperty
	URI  *URIProperty
}

// Group returns the group of whichever variant is set.
func (p *TextOrURIProperty) Group() string {
	if p.Text != nil {
		return p.Text.Group
	}
	return p.URI.Group
}

// Params returns the parameters of whichever variant is set.
func (p *TextOrURIProperty) Params() *Params {
	if p.Text != nil {
		return &p.Text.Params
	}
	return &p.URI.Params
}

// String formats the value of whichever variant is set.
func (p *TextOrURIProperty) String() string {
	if p.Text != nil {
		return p.Text.Value
	}
	return p.URI.Value.String()
}

// DateAndOrTimeOrTextProperty is a property whose value is either a
// date-and-or-time or, with VALUE=text, free text. Exactly one field is
// non-nil.
type DateAndOrTimeOrTextProperty struct {
	DateAndOrTime *DateAndOrTimeProperty
	Text          *TextProperty
}

// Group returns the group of whichever variant is set.
func (p *DateAndOrTimeOrTextProperty) Group() string {
	if p.Text != nil {
		return p.Text.Group
	}
	return p.DateAndOrTime.Group
}

// Params returns the parameters of whichever variant is set.
func (p *DateAndOrTimeOrTextProperty) Params() *Params {
	if p.Text != nil {
		return &p.Text.Params
	}
	return &p.DateAndOrTime.Params
}

// String formats the value of whichever variant is set.
func (p *DateAndOrTimeOrTextProperty) String() string {
	if p.Text != nil {
		return p.Text.Value
	}
	return p.DateAndOrTime.Value.String()
}

// TimeZoneProperty is a TZ property: text, a URI or a UTC offset.
// Exactly one field is non-nil.
type TimeZoneProperty struct {
	Text   *TextProperty
	URI    *URIProperty
	Offset *UTCOffsetProperty
}

// Group returns the group of whichever variant is set.
func (p *TimeZoneProperty) Group() string {
	switch {
	case p.Text != nil:
		return p.Text.Group
	case p.URI != nil:
		return p.URI.Group
	default:
		return p.Offset.Group
	}
}

// Params returns the parameters of whichever variant is set.
func (p *TimeZoneProperty) Params() *Params {
	switch {
	case p.Text != nil:
		return &p.Text.Params
	case p.URI != nil:
		return &p.URI.Params
	default:
		return &p.Offset.Params
	}
}

// String formats the value of whichever variant is set.
func (p *TimeZoneProperty) String() string {
	switch {
	case p.Text != nil:
		return p.Text.Value
	case p.URI != nil:
		return p.URI.Value.String()
	default:
		return p.Offset.Value.String()
	}
}

// AnyValue is a type-widened value for extension properties. Kind
// selects which field is meaningful; the VALUE parameter selects the
// kind at parse time, defaulting to text.
type AnyValue struct {
	Kind ValueType

	Text          string
	Integer       int64
	Float         float64
	Boolean       bool
	Date          Date
	Time          Time
	DateTime      DateTime
	DateAndOrTime DateAndOrTime
	Timestamp     time.Time
	URI           *url.URL
	UTCOffset     UTCOffset
	Language      language.Tag
}

// ExtensionProperty is a property with an X- prefixed name, preserved
// verbatim with a type-widened value.
type ExtensionProperty struct {
	// Name is the property name, upper-cased.
	Name string
	// Group is the optional group identifier.
	Group string
	// Value is the type-widened value.
	Value AnyValue
	// Params holds the property parameters.
	Params Params
}

// Card is a parsed vCard. The VERSION property is implicit: every Card
// is version 4.0. Pointer fields hold properties that may appear at most
// once; slice fields keep their properties in parse order.
type Card struct {
	Kind          *KindProperty
	FormattedName []TextProperty
	Name          *NameProperty
	Nickname      []TextListProperty
	Photo         []URIProperty
	Birthday      *DateAndOrTimeOrTextProperty
	Anniversary   *DateAndOrTimeOrTextProperty
	Gender        *GenderProperty
	Address       []AddressProperty
	Tel           []TextOrURIProperty
	Email         []URIProperty
	IMPP          []URIProperty
	Lang          []LanguageProperty
	TimeZone      []TimeZoneProperty
	Geo           []URIProperty
	Title         []TextProperty
	Role          []TextProperty
	Logo          []URIProperty
	Org           []TextListProperty
	Member        []URIProperty
	Related       []TextOrURIProperty
	Categories    []TextListProperty
	Note          []TextProperty
	ProdID        *TextProperty
	Rev           *TimestampProperty
	Sound         []URIProperty
	UID           *TextOrURIProperty
	ClientPidMap  []ClientPidMapProperty
	URL           []URIProperty
	Source        []URIProperty
	XML           []TextProperty
	FBURL         []URIProperty
	CalAdrURI     []URIProperty
	CalURI        []URIProperty
	Key           []URIProperty
	Extensions    []ExtensionProperty
}

// Is reports whether the card's KIND property is set to the given kind.
func (c *Card) Is(kind Kind) bool {
	return c.Kind != nil && c.Kind.Value == kind
}

// PreferredFormattedName returns the FN instance with the lowest PREF
// value, falling back to the first instance when none carries PREF. It
// returns nil when the card has no FN.
func (c *Card) PreferredFormattedName() *TextProperty {
	var best *TextProperty
	for i := range c.FormattedName {
		p := &c.FormattedName[i]
		if best == nil {
			best = p
			continue
		}
		if p.Params.Pref != 0 && (best.Params.Pref == 0 || p.Params.Pref < best.Params.Pref) {
			best = p
		}
	}
	return best
}
