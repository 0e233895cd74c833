package vcard

import (
	"errors"
	"io"
	"mime"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// contentLine is a lexed content line: a property name with its group,
// raw parameters and raw value.
type contentLine struct {
	group  string
	name   string
	params []rawParam
	value  string
	line   int
}

type rawParam struct {
	name   string
	values []item
}

// parseContentLine drives the lexer over one logical line.
func parseContentLine(line string, ln int) (*contentLine, error) {
	l := newLexer(line, ln)
	cl := &contentLine{line: ln}

	it, err := l.next()
	if err != nil {
		return nil, err
	}
	if it.typ == itemGroup {
		cl.group = it.val
		if it, err = l.next(); err != nil {
			return nil, err
		}
	}
	if it.typ != itemName {
		return nil, &Error{Code: ErrIncorrectToken, Value: it.val, Line: ln}
	}
	cl.name = strings.ToUpper(it.val)

	for {
		it, err = l.next()
		if err != nil {
			return nil, err
		}
		switch it.typ {
		case itemParamName:
			cl.params = append(cl.params, rawParam{name: strings.ToUpper(it.val)})
		case itemParamValue:
			p := &cl.params[len(cl.params)-1]
			p.values = append(p.values, it)
		case itemValue:
			cl.value = it.val
			return cl, nil
		default:
			return nil, &Error{Code: ErrIncorrectToken, Value: it.val, Line: ln}
		}
	}
}

// singleValue enforces that a parameter has exactly one value. A comma
// splits an unquoted value, so multiple values on a single-valued
// parameter mean the value should have been quoted.
func (p *rawParam) singleValue() (string, error) {
	if len(p.values) != 1 {
		vals := make([]string, len(p.values))
		for i, v := range p.values {
			vals[i] = v.val
		}
		return "", newError(ErrNotQuoted, strings.Join(vals, ","))
	}
	return p.values[0].val, nil
}

// buildParams assembles the typed parameter record from the raw lexed
// parameters and returns the set of canonical parameter names present.
func (cl *contentLine) buildParams() (Params, map[string]bool, error) {
	var params Params
	seen := make(map[string]bool)
	for i := range cl.params {
		p := &cl.params[i]
		seen[p.name] = true
		if strings.HasPrefix(p.name, "X-") {
			if params.Extensions == nil {
				params.Extensions = make(map[string][]string)
			}
			for _, v := range p.values {
				params.Extensions[p.name] = append(params.Extensions[p.name], v.val)
			}
			continue
		}
		switch p.name {
		case "LANGUAGE":
			v, err := p.singleValue()
			if err != nil {
				return params, seen, err
			}
			tag, err := language.Parse(v)
			if err != nil {
				return params, seen, wrapError(ErrLanguageParse, v, err)
			}
			params.Language = tag
		case "VALUE":
			v, err := p.singleValue()
			if err != nil {
				return params, seen, err
			}
			vt, err := ParseValueType(v)
			if err != nil {
				return params, seen, err
			}
			params.Value = vt
		case "PREF":
			v, err := p.singleValue()
			if err != nil {
				return params, seen, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return params, seen, wrapError(ErrNumberParse, v, err)
			}
			if n < 1 || n > 100 {
				return params, seen, newError(ErrPrefOutOfRange, v)
			}
			params.Pref = n
		case "ALTID":
			v, err := p.singleValue()
			if err != nil {
				return params, seen, err
			}
			params.AltID = v
		case "PID":
			for _, v := range p.values {
				pid, err := ParsePID(v.val)
				if err != nil {
					return params, seen, err
				}
				params.PIDs = append(params.PIDs, pid)
			}
		case "TYPE":
			for _, v := range p.values {
				params.Types = append(params.Types, v.val)
			}
		case "MEDIATYPE":
			v, err := p.singleValue()
			if err != nil {
				return params, seen, err
			}
			if _, _, err := mime.ParseMediaType(v); err != nil {
				return params, seen, wrapError(ErrMediaTypeParse, v, err)
			}
			params.MediaType = v
		case "CALSCALE":
			v, err := p.singleValue()
			if err != nil {
				return params, seen, err
			}
			params.CalScale = v
		case "SORT-AS":
			for _, v := range p.values {
				params.SortAs = append(params.SortAs, v.val)
			}
		case "GEO":
			v, err := p.singleValue()
			if err != nil {
				return params, seen, err
			}
			if !p.values[0].quoted {
				return params, seen, newError(ErrNotQuoted, v)
			}
			u, err := url.Parse(v)
			if err != nil {
				return params, seen, wrapError(ErrURIParse, v, err)
			}
			params.Geo = u
		case "TZ":
			v, err := p.singleValue()
			if err != nil {
				return params, seen, err
			}
			if off, err := ParseUTCOffset(v); err == nil {
				params.TZ = &TimeZoneParam{Offset: &off}
			} else {
				params.TZ = &TimeZoneParam{Text: v}
			}
		case "LABEL":
			v, err := p.singleValue()
			if err != nil {
				return params, seen, err
			}
			params.Label = unescapeText(v)
		case "CC":
			v, err := p.singleValue()
			if err != nil {
				return params, seen, err
			}
			params.CC = v
		case "INDEX":
			v, err := p.singleValue()
			if err != nil {
				return params, seen, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return params, seen, wrapError(ErrNumberParse, v, err)
			}
			params.Index = n
		case "LEVEL":
			v, err := p.singleValue()
			if err != nil {
				return params, seen, err
			}
			params.Level = v
		case "CHARSET":
			v, err := p.singleValue()
			if err != nil {
				return params, seen, err
			}
			if !strings.EqualFold(v, "UTF-8") {
				return params, seen, newError(ErrCharsetParameter, v)
			}
			params.Charset = v
		default:
			return params, seen, newError(ErrUnknownParameter, p.name)
		}
	}
	return params, seen, nil
}

// propertyDef declares the value grammar and parameter policy of a
// property. The first entry of values is the default when no VALUE
// parameter is given.
type propertyDef struct {
	values    []ValueType
	allowType bool
	once      bool
}

var properties = map[string]propertyDef{
	"SOURCE":       {values: []ValueType{ValueURI}},
	"KIND":         {values: []ValueType{ValueText}, once: true},
	"FN":           {values: []ValueType{ValueText}, allowType: true},
	"N":            {values: []ValueType{ValueText}, once: true},
	"NICKNAME":     {values: []ValueType{ValueText}, allowType: true},
	"PHOTO":        {values: []ValueType{ValueURI}, allowType: true},
	"BDAY":         {values: []ValueType{ValueDateAndOrTime, ValueText}, once: true},
	"ANNIVERSARY":  {values: []ValueType{ValueDateAndOrTime, ValueText}, once: true},
	"GENDER":       {values: []ValueType{ValueText}, once: true},
	"ADR":          {values: []ValueType{ValueText}, allowType: true},
	"TEL":          {values: []ValueType{ValueURI, ValueText}, allowType: true},
	"EMAIL":        {values: []ValueType{ValueURI}, allowType: true},
	"IMPP":         {values: []ValueType{ValueURI}, allowType: true},
	"LANG":         {values: []ValueType{ValueLanguageTag}, allowType: true},
	"TZ":           {values: []ValueType{ValueText, ValueURI, ValueUTCOffset}, allowType: true},
	"GEO":          {values: []ValueType{ValueURI}, allowType: true},
	"TITLE":        {values: []ValueType{ValueText}, allowType: true},
	"ROLE":         {values: []ValueType{ValueText}, allowType: true},
	"LOGO":         {values: []ValueType{ValueURI}, allowType: true},
	"ORG":          {values: []ValueType{ValueText}, allowType: true},
	"MEMBER":       {values: []ValueType{ValueURI}},
	"RELATED":      {values: []ValueType{ValueURI, ValueText}, allowType: true},
	"CATEGORIES":   {values: []ValueType{ValueText}, allowType: true},
	"NOTE":         {values: []ValueType{ValueText}, allowType: true},
	"PRODID":       {values: []ValueType{ValueText}, once: true},
	"REV":          {values: []ValueType{ValueTimestamp}, once: true},
	"SOUND":        {values: []ValueType{ValueURI}, allowType: true},
	"UID":          {values: []ValueType{ValueURI, ValueText}, once: true},
	"CLIENTPIDMAP": {values: []ValueType{ValueText}},
	"URL":          {values: []ValueType{ValueURI}, allowType: true},
	"XML":          {values: []ValueType{ValueText}},
	"FBURL":        {values: []ValueType{ValueURI}, allowType: true},
	"CALADRURI":    {values: []ValueType{ValueURI}, allowType: true},
	"CALURI":       {values: []ValueType{ValueURI}, allowType: true},
	"KEY":          {values: []ValueType{ValueURI}, allowType: true},
}

// telTypes are the TYPE values RFC 6350 section 6.4.1 permits on TEL.
var telTypes = map[string]bool{
	"text": true, "voice": true, "fax": true, "cell": true,
	"video": true, "pager": true, "textphone": true,
	"home": true, "work": true,
}

// relatedTypes are the TYPE values RFC 6350 section 6.6.6 permits on
// RELATED.
var relatedTypes = map[string]bool{
	"contact": true, "acquaintance": true, "friend": true, "met": true,
	"co-worker": true, "colleague": true, "co-resident": true,
	"neighbor": true, "child": true, "parent": true, "sibling": true,
	"spouse": true, "kin": true, "muse": true, "crush": true,
	"date": true, "sweetheart": true, "me": true, "agent": true,
	"emergency": true,
}

// checkParams enforces the parameter applicability policy for the
// dispatched property.
func checkParams(cl *contentLine, def propertyDef, params *Params, seen map[string]bool) error {
	if params.Label != "" && cl.name != "ADR" {
		return newError(ErrInvalidLabel, cl.name)
	}
	if seen["TYPE"] && !def.allowType {
		return newError(ErrTypeParameter, cl.name)
	}
	if seen["PID"] && cl.name == "CLIENTPIDMAP" {
		return newError(ErrClientPidMapPidNotAllowed, cl.name)
	}
	if params.Value != "" {
		ok := false
		for _, v := range def.values {
			if v == params.Value {
				ok = true
				break
			}
		}
		if !ok {
			return &Error{Code: ErrUnsupportedValueType, Value: string(params.Value), Property: cl.name}
		}
	}
	switch cl.name {
	case "TEL":
		for _, t := range params.Types {
			if !telTypes[strings.ToLower(t)] {
				return newError(ErrUnknownTelephoneType, t)
			}
		}
	case "RELATED":
		for _, t := range params.Types {
			if !relatedTypes[strings.ToLower(t)] {
				return newError(ErrUnknownRelatedType, t)
			}
		}
	}
	return nil
}

// valueType resolves the effective value type of the content line.
func valueType(def propertyDef, params *Params) ValueType {
	if params.Value != "" {
		return params.Value
	}
	return def.values[0]
}

func (cl *contentLine) text(params Params) TextProperty {
	return TextProperty{Group: cl.group, Value: unescapeText(cl.value), Params: params}
}

func (cl *contentLine) textList(params Params) TextListProperty {
	return TextListProperty{Group: cl.group, Value: unescapeList(cl.value), Params: params}
}

func (cl *contentLine) uri(params Params) (URIProperty, error) {
	u, err := url.Parse(cl.value)
	if err != nil {
		return URIProperty{}, wrapError(ErrURIParse, cl.value, err)
	}
	return URIProperty{Group: cl.group, Value: u, Params: params}, nil
}

func (cl *contentLine) textOrURI(vt ValueType, params Params) (TextOrURIProperty, error) {
	if vt == ValueText {
		p := cl.text(params)
		return TextOrURIProperty{Text: &p}, nil
	}
	p, err := cl.uri(params)
	if err != nil {
		return TextOrURIProperty{}, err
	}
	return TextOrURIProperty{URI: &p}, nil
}

func (cl *contentLine) dateAndOrTimeOrText(vt ValueType, params Params) (DateAndOrTimeOrTextProperty, error) {
	if vt == ValueText {
		p := cl.text(params)
		return DateAndOrTimeOrTextProperty{Text: &p}, nil
	}
	v, err := ParseDateAndOrTime(cl.value)
	if err != nil {
		return DateAndOrTimeOrTextProperty{}, err
	}
	p := DateAndOrTimeProperty{Group: cl.group, Value: v, Params: params}
	return DateAndOrTimeOrTextProperty{DateAndOrTime: &p}, nil
}

// addProperty dispatches a content line into its typed card field.
func addProperty(card *Card, cl *contentLine) error {
	if cl.name == "VERSION" {
		return newError(ErrVersionMisplaced, cl.name)
	}
	def, known := properties[cl.name]
	if !known {
		if strings.HasPrefix(cl.name, "X-") {
			return addExtension(card, cl)
		}
		return newError(ErrUnknownPropertyName, cl.name)
	}

	params, seen, err := cl.buildParams()
	if err != nil {
		return err
	}
	if err := checkParams(cl, def, &params, seen); err != nil {
		return err
	}
	vt := valueType(def, &params)

	switch cl.name {
	case "SOURCE":
		p, err := cl.uri(params)
		if err != nil {
			return err
		}
		card.Source = append(card.Source, p)
	case "KIND":
		if card.Kind != nil {
			return newError(ErrOnlyOnce, cl.name)
		}
		kind, err := ParseKind(cl.value)
		if err != nil {
			return err
		}
		card.Kind = &KindProperty{Group: cl.group, Value: kind, Params: params}
	case "FN":
		card.FormattedName = append(card.FormattedName, cl.text(params))
	case "N":
		if card.Name != nil {
			return newError(ErrOnlyOnce, cl.name)
		}
		name, err := ParseName(cl.value)
		if err != nil {
			return err
		}
		card.Name = &NameProperty{Group: cl.group, Value: name, Params: params}
	case "NICKNAME":
		card.Nickname = append(card.Nickname, cl.textList(params))
	case "PHOTO":
		p, err := cl.uri(params)
		if err != nil {
			return err
		}
		card.Photo = append(card.Photo, p)
	case "BDAY":
		if card.Birthday != nil {
			return newError(ErrOnlyOnce, cl.name)
		}
		p, err := cl.dateAndOrTimeOrText(vt, params)
		if err != nil {
			return err
		}
		card.Birthday = &p
	case "ANNIVERSARY":
		if card.Anniversary != nil {
			return newError(ErrOnlyOnce, cl.name)
		}
		p, err := cl.dateAndOrTimeOrText(vt, params)
		if err != nil {
			return err
		}
		card.Anniversary = &p
	case "GENDER":
		if card.Gender != nil {
			return newError(ErrOnlyOnce, cl.name)
		}
		gender, err := ParseGender(cl.value)
		if err != nil {
			return err
		}
		card.Gender = &GenderProperty{Group: cl.group, Value: gender, Params: params}
	case "ADR":
		addr, err := ParseDeliveryAddress(cl.value)
		if err != nil {
			return err
		}
		card.Address = append(card.Address, AddressProperty{Group: cl.group, Value: addr, Params: params})
	case "TEL":
		p, err := cl.textOrURI(vt, params)
		if err != nil {
			return err
		}
		card.Tel = append(card.Tel, p)
	case "EMAIL":
		p, err := cl.uri(params)
		if err != nil {
			return err
		}
		card.Email = append(card.Email, p)
	case "IMPP":
		p, err := cl.uri(params)
		if err != nil {
			return err
		}
		card.IMPP = append(card.IMPP, p)
	case "LANG":
		tag, err := language.Parse(cl.value)
		if err != nil {
			return wrapError(ErrLanguageParse, cl.value, err)
		}
		card.Lang = append(card.Lang, LanguageProperty{Group: cl.group, Value: tag, Params: params})
	case "TZ":
		p, err := cl.timeZone(vt, params)
		if err != nil {
			return err
		}
		card.TimeZone = append(card.TimeZone, p)
	case "GEO":
		p, err := cl.uri(params)
		if err != nil {
			return err
		}
		card.Geo = append(card.Geo, p)
	case "TITLE":
		card.Title = append(card.Title, cl.text(params))
	case "ROLE":
		card.Role = append(card.Role, cl.text(params))
	case "LOGO":
		p, err := cl.uri(params)
		if err != nil {
			return err
		}
		card.Logo = append(card.Logo, p)
	case "ORG":
		card.Org = append(card.Org, cl.textList(params))
	case "MEMBER":
		p, err := cl.uri(params)
		if err != nil {
			return err
		}
		card.Member = append(card.Member, p)
	case "RELATED":
		p, err := cl.textOrURI(vt, params)
		if err != nil {
			return err
		}
		card.Related = append(card.Related, p)
	case "CATEGORIES":
		card.Categories = append(card.Categories, cl.textList(params))
	case "NOTE":
		card.Note = append(card.Note, cl.text(params))
	case "PRODID":
		if card.ProdID != nil {
			return newError(ErrOnlyOnce, cl.name)
		}
		p := cl.text(params)
		card.ProdID = &p
	case "REV":
		if card.Rev != nil {
			return newError(ErrOnlyOnce, cl.name)
		}
		ts, err := ParseTimestamp(cl.value)
		if err != nil {
			return err
		}
		card.Rev = &TimestampProperty{Group: cl.group, Value: ts, Params: params}
	case "SOUND":
		p, err := cl.uri(params)
		if err != nil {
			return err
		}
		card.Sound = append(card.Sound, p)
	case "UID":
		if card.UID != nil {
			return newError(ErrOnlyOnce, cl.name)
		}
		p, err := cl.textOrURI(vt, params)
		if err != nil {
			return err
		}
		card.UID = &p
	case "CLIENTPIDMAP":
		v, err := ParseClientPidMap(cl.value)
		if err != nil {
			return err
		}
		card.ClientPidMap = append(card.ClientPidMap, ClientPidMapProperty{Group: cl.group, Value: v, Params: params})
	case "URL":
		p, err := cl.uri(params)
		if err != nil {
			return err
		}
		card.URL = append(card.URL, p)
	case "XML":
		card.XML = append(card.XML, cl.text(params))
	case "FBURL":
		p, err := cl.uri(params)
		if err != nil {
			return err
		}
		card.FBURL = append(card.FBURL, p)
	case "CALADRURI":
		p, err := cl.uri(params)
		if err != nil {
			return err
		}
		card.CalAdrURI = append(card.CalAdrURI, p)
	case "CALURI":
		p, err := cl.uri(params)
		if err != nil {
			return err
		}
		card.CalURI = append(card.CalURI, p)
	case "KEY":
		p, err := cl.uri(params)
		if err != nil {
			return err
		}
		card.Key = append(card.Key, p)
	}
	return nil
}

func (cl *contentLine) timeZone(vt ValueType, params Params) (TimeZoneProperty, error) {
	switch vt {
	case ValueURI:
		p, err := cl.uri(params)
		if err != nil {
			return TimeZoneProperty{}, err
		}
		return TimeZoneProperty{URI: &p}, nil
	case ValueUTCOffset:
		off, err := ParseUTCOffset(cl.value)
		if err != nil {
			return TimeZoneProperty{}, err
		}
		p := UTCOffsetProperty{Group: cl.group, Value: off, Params: params}
		return TimeZoneProperty{Offset: &p}, nil
	default:
		p := cl.text(params)
		return TimeZoneProperty{Text: &p}, nil
	}
}

// addExtension preserves an X- property with a type-widened value.
func addExtension(card *Card, cl *contentLine) error {
	params, _, err := cl.buildParams()
	if err != nil {
		return err
	}
	if params.Label != "" {
		return newError(ErrInvalidLabel, cl.name)
	}
	value, err := cl.anyValue(&params)
	if err != nil {
		return err
	}
	card.Extensions = append(card.Extensions, ExtensionProperty{
		Name:   cl.name,
		Group:  cl.group,
		Value:  value,
		Params: params,
	})
	return nil
}

func (cl *contentLine) anyValue(params *Params) (AnyValue, error) {
	kind := params.Value
	if kind == "" {
		kind = ValueText
	}
	v := AnyValue{Kind: kind}
	var err error
	switch kind {
	case ValueText:
		v.Text = unescapeText(cl.value)
	case ValueInteger:
		v.Integer, err = strconv.ParseInt(cl.value, 10, 64)
		if err != nil {
			return v, wrapError(ErrNumberParse, cl.value, err)
		}
	case ValueFloat:
		v.Float, err = strconv.ParseFloat(cl.value, 64)
		if err != nil {
			return v, wrapError(ErrNumberParse, cl.value, err)
		}
	case ValueBoolean:
		v.Boolean, err = ParseBoolean(cl.value)
	case ValueDate:
		v.Date, err = ParseDate(cl.value)
	case ValueTime:
		v.Time, err = ParseTime(cl.value)
	case ValueDateTime:
		v.DateTime, err = ParseDateTime(cl.value)
	case ValueDateAndOrTime:
		v.DateAndOrTime, err = ParseDateAndOrTime(cl.value)
	case ValueTimestamp:
		v.Timestamp, err = ParseTimestamp(cl.value)
	case ValueURI:
		v.URI, err = url.Parse(cl.value)
		if err != nil {
			return v, wrapError(ErrURIParse, cl.value, err)
		}
	case ValueUTCOffset:
		v.UTCOffset, err = ParseUTCOffset(cl.value)
	case ValueLanguageTag:
		v.Language, err = language.Parse(cl.value)
		if err != nil {
			return v, wrapError(ErrLanguageParse, cl.value, err)
		}
	}
	return v, err
}

// parser assembles cards from the logical line stream.
type parser struct {
	u *unfolder
}

// parseAll reads every card in the input.
func (p *parser) parseAll() ([]*Card, error) {
	var cards []*Card
	for {
		card, err := p.parseCard()
		if err == io.EOF {
			return cards, nil
		}
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
}

// parseCard reads one BEGIN:VCARD..END:VCARD block. It returns io.EOF
// when the input is exhausted before a card begins.
func (p *parser) parseCard() (*Card, error) {
	// skip blank lines between cards
	var line string
	var ln int
	for {
		var err error
		line, ln, err = p.u.readLogical()
		if err != nil {
			return nil, err
		}
		if line != "" {
			break
		}
	}
	if !strings.EqualFold(line, "BEGIN:VCARD") {
		return nil, &Error{Code: ErrIncorrectToken, Value: line, Line: ln}
	}

	line, ln, err := p.u.readLogical()
	if err != nil {
		return nil, eofError(err)
	}
	if !strings.EqualFold(line, "VERSION:4.0") {
		return nil, &Error{Code: ErrVersionMisplaced, Value: line, Line: ln}
	}

	card := &Card{}
	for {
		line, ln, err = p.u.readLogical()
		if err != nil {
			return nil, eofError(err)
		}
		if strings.EqualFold(line, "END:VCARD") {
			if err := validateCard(card, ln); err != nil {
				return nil, err
			}
			return card, nil
		}
		if strings.EqualFold(line, "BEGIN:VCARD") {
			return nil, &Error{Code: ErrIncorrectToken, Value: line, Line: ln}
		}
		cl, err := parseContentLine(line, ln)
		if err != nil {
			return nil, err
		}
		if err := addProperty(card, cl); err != nil {
			return nil, atLine(err, cl.name, ln)
		}
	}
}

// validateCard enforces the card-level invariants at END:VCARD.
func validateCard(card *Card, ln int) error {
	if len(card.FormattedName) == 0 {
		return &Error{Code: ErrNoFormattedName, Line: ln}
	}
	if len(card.Member) > 0 && !card.Is(KindGroup) {
		return &Error{Code: ErrMemberRequiresGroup, Line: ln}
	}
	return nil
}

// eofError maps an end of input inside a card to ErrTokenExpected.
func eofError(err error) error {
	if err == io.EOF {
		return newError(ErrTokenExpected, "")
	}
	return err
}

// atLine decorates an error with the position and property it occurred
// on, when the sub-parser did not record them.
func atLine(err error, property string, ln int) error {
	var e *Error
	if errors.As(err, &e) {
		if e.Line == 0 {
			e.Line = ln
		}
		if e.Property == "" {
			e.Property = property
		}
	}
	return err
}
