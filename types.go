package vcard

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Kind describes the kind of entity a vCard represents. It's defined in
// RFC 6350 section 6.1.4.
type Kind string

const (
	// KindIndividual is a single entity or person.
	KindIndividual Kind = "individual"
	// KindGroup is a group of entities.
	KindGroup Kind = "group"
	// KindOrg is an organization.
	KindOrg Kind = "org"
	// KindLocation is a named geographical place.
	KindLocation Kind = "location"
)

// ParseKind parses a KIND property value.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "individual":
		return KindIndividual, nil
	case "group":
		return KindGroup, nil
	case "org":
		return KindOrg, nil
	case "location":
		return KindLocation, nil
	}
	return "", newError(ErrUnknownKind, s)
}

// String formats the kind.
func (k Kind) String() string {
	return string(k)
}

// Sex is the sex component of a GENDER property.
type Sex string

const (
	// SexNone indicates that no sex was specified.
	SexNone Sex = ""
	// SexMale is male.
	SexMale Sex = "M"
	// SexFemale is female.
	SexFemale Sex = "F"
	// SexOther is another sex.
	SexOther Sex = "O"
	// SexNotApplicable indicates that sex is not applicable.
	SexNotApplicable Sex = "N"
	// SexUnknown indicates that the sex is not known.
	SexUnknown Sex = "U"
)

// ParseSex parses the sex component of a GENDER property. The empty
// string is permitted and yields SexNone.
func ParseSex(s string) (Sex, error) {
	switch s {
	case "", "M", "F", "O", "N", "U":
		return Sex(s), nil
	}
	return "", newError(ErrUnknownSex, s)
}

// String formats the sex.
func (s Sex) String() string {
	return string(s)
}

// Gender is the value of a GENDER property: a sex component optionally
// followed by free-form identity text.
type Gender struct {
	Sex      Sex
	Identity string
}

// ParseGender parses a GENDER property value of the form
// `sex [";" identity]`. An empty value yields SexNone.
func ParseGender(s string) (Gender, error) {
	if s == "" {
		return Gender{Sex: SexNone}, nil
	}
	sexPart, identity, _ := strings.Cut(s, ";")
	sex, err := ParseSex(sexPart)
	if err != nil {
		return Gender{}, err
	}
	return Gender{Sex: sex, Identity: identity}, nil
}

// String formats the gender.
func (g Gender) String() string {
	if g.Identity != "" {
		return string(g.Sex) + ";" + g.Identity
	}
	return string(g.Sex)
}

// UTCOffset is a UTC offset in minutes east of UTC.
type UTCOffset int

// ParseUTCOffset parses a UTC offset of exactly the form ±hhmm.
func ParseUTCOffset(s string) (UTCOffset, error) {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return 0, newError(ErrInvalidUTCOffset, s)
	}
	for i := 1; i < 5; i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, newError(ErrInvalidUTCOffset, s)
		}
	}
	hours, _ := strconv.Atoi(s[1:3])
	minutes, _ := strconv.Atoi(s[3:5])
	if hours > 23 || minutes > 59 {
		return 0, newError(ErrInvalidUTCOffset, s)
	}
	off := UTCOffset(hours*60 + minutes)
	if s[0] == '-' {
		off = -off
	}
	return off, nil
}

// String formats the offset as ±hhmm with zero padding.
func (o UTCOffset) String() string {
	sign := "+"
	if o < 0 {
		sign = "-"
		o = -o
	}
	return fmt.Sprintf("%s%02d%02d", sign, int(o)/60, int(o)%60)
}

// Location returns a fixed time.Location with this offset.
func (o UTCOffset) Location() *time.Location {
	return time.FixedZone(o.String(), int(o)*60)
}

// Date is a possibly truncated calendar date. Zero components are
// unspecified, so --0415 has only Month and Day set.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a date of one of the forms YYYYMMDD, YYYY-MM, --MMDD,
// ---DD or YYYY.
func ParseDate(s string) (Date, error) {
	var d Date
	switch {
	case len(s) == 8 && allDigits(s):
		d.Year = atoi(s[0:4])
		d.Month = time.Month(atoi(s[4:6]))
		d.Day = atoi(s[6:8])
	case len(s) == 7 && s[4] == '-' && allDigits(s[0:4]) && allDigits(s[5:7]):
		d.Year = atoi(s[0:4])
		d.Month = time.Month(atoi(s[5:7]))
	case len(s) == 6 && strings.HasPrefix(s, "--") && allDigits(s[2:]):
		d.Month = time.Month(atoi(s[2:4]))
		d.Day = atoi(s[4:6])
	case len(s) == 5 && strings.HasPrefix(s, "---") && allDigits(s[3:]):
		d.Day = atoi(s[3:5])
	case len(s) == 4 && allDigits(s):
		d.Year = atoi(s)
	default:
		return Date{}, newError(ErrInvalidDate, s)
	}
	// zero marks an unspecified component, so a literal zero in any
	// present component is out of range
	switch {
	case len(s) == 8 && (d.Year == 0 || d.Month == 0 || d.Day == 0),
		len(s) == 7 && (d.Year == 0 || d.Month == 0),
		len(s) == 6 && (d.Month == 0 || d.Day == 0),
		len(s) == 5 && d.Day == 0,
		len(s) == 4 && d.Year == 0:
		return Date{}, newError(ErrInvalidDate, s)
	}
	if !d.valid() {
		return Date{}, newError(ErrInvalidDate, s)
	}
	return d, nil
}

// valid checks the calendar ranges of whichever components are present.
// Truncated dates are checked against a leap year so --0229 is accepted.
func (d Date) valid() bool {
	if d.Month != 0 && (d.Month < time.January || d.Month > time.December) {
		return false
	}
	if d.Day != 0 && (d.Day < 1 || d.Day > 31) {
		return false
	}
	if d.Month != 0 && d.Day != 0 {
		year := d.Year
		if year == 0 {
			year = 2004
		}
		t := time.Date(year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
		if t.Month() != d.Month || t.Day() != d.Day {
			return false
		}
	}
	return true
}

// String formats the date in the same truncated form it was parsed from.
// A hand-constructed month-only date renders as --MM even though the
// grammar has no such form, so ParseDate never yields one.
func (d Date) String() string {
	switch {
	case d.Year != 0 && d.Month != 0 && d.Day != 0:
		return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
	case d.Year != 0 && d.Month != 0:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	case d.Year != 0:
		return fmt.Sprintf("%04d", d.Year)
	case d.Month != 0 && d.Day != 0:
		return fmt.Sprintf("--%02d%02d", d.Month, d.Day)
	case d.Month != 0:
		return fmt.Sprintf("--%02d", d.Month)
	default:
		return fmt.Sprintf("---%02d", d.Day)
	}
}

// Time is a possibly truncated time of day with an optional UTC offset.
// Components set to -1 are unspecified. A nil Offset means local time; a
// zero Offset is rendered as "Z".
type Time struct {
	Hour   int
	Minute int
	Second int
	Offset *UTCOffset
}

// ParseTime parses a time of one of the forms hhmmss, hhmm, hh, -mmss or
// --ss, optionally followed by "Z" or a ±hhmm zone designator.
func ParseTime(s string) (Time, error) {
	t := Time{Hour: -1, Minute: -1, Second: -1}
	orig := s

	if strings.HasSuffix(s, "Z") {
		zero := UTCOffset(0)
		t.Offset = &zero
		s = s[:len(s)-1]
	} else if i := len(s) - 5; i > 0 && (s[i] == '+' || s[i] == '-') {
		off, err := ParseUTCOffset(s[i:])
		if err != nil {
			return Time{}, newError(ErrInvalidTime, orig)
		}
		t.Offset = &off
		s = s[:i]
	}

	switch {
	case len(s) == 6 && allDigits(s):
		t.Hour, t.Minute, t.Second = atoi(s[0:2]), atoi(s[2:4]), atoi(s[4:6])
	case len(s) == 4 && allDigits(s):
		t.Hour, t.Minute = atoi(s[0:2]), atoi(s[2:4])
	case len(s) == 2 && allDigits(s):
		t.Hour = atoi(s)
	case len(s) == 5 && s[0] == '-' && allDigits(s[1:]):
		t.Minute, t.Second = atoi(s[1:3]), atoi(s[3:5])
	case len(s) == 4 && strings.HasPrefix(s, "--") && allDigits(s[2:]):
		t.Second = atoi(s[2:])
	default:
		return Time{}, newError(ErrInvalidTime, orig)
	}

	if t.Hour > 23 || t.Minute > 59 || t.Second > 59 {
		return Time{}, newError(ErrInvalidTime, orig)
	}
	return t, nil
}

// String formats the time in the same truncated form it was parsed from.
func (t Time) String() string {
	var sb strings.Builder
	switch {
	case t.Hour >= 0 && t.Minute >= 0 && t.Second >= 0:
		fmt.Fprintf(&sb, "%02d%02d%02d", t.Hour, t.Minute, t.Second)
	case t.Hour >= 0 && t.Minute >= 0:
		fmt.Fprintf(&sb, "%02d%02d", t.Hour, t.Minute)
	case t.Hour >= 0:
		fmt.Fprintf(&sb, "%02d", t.Hour)
	case t.Minute >= 0:
		fmt.Fprintf(&sb, "-%02d%02d", t.Minute, t.Second)
	default:
		fmt.Fprintf(&sb, "--%02d", t.Second)
	}
	if t.Offset != nil {
		if *t.Offset == 0 {
			sb.WriteString("Z")
		} else {
			sb.WriteString(t.Offset.String())
		}
	}
	return sb.String()
}

// DateTime is a date joined to a time with the "T" designator.
type DateTime struct {
	Date Date
	Time Time
}

// ParseDateTime parses a date-time of the form `date "T" time`.
func ParseDateTime(s string) (DateTime, error) {
	datePart, timePart, found := strings.Cut(s, "T")
	if !found || datePart == "" || timePart == "" {
		return DateTime{}, newError(ErrInvalidDateTime, s)
	}
	d, err := ParseDate(datePart)
	if err != nil {
		return DateTime{}, err
	}
	t, err := ParseTime(timePart)
	if err != nil {
		return DateTime{}, err
	}
	return DateTime{Date: d, Time: t}, nil
}

// String formats the date-time.
func (dt DateTime) String() string {
	return dt.Date.String() + "T" + dt.Time.String()
}

// DateAndOrTime is a date, a time, or a date-time. Exactly one of the
// fields is non-nil.
type DateAndOrTime struct {
	DateTime *DateTime
	Date     *Date
	Time     *Time
}

// ParseDateAndOrTime parses a date-and-or-time value, trying date-time,
// then date, then time. A standalone time may carry the "T" prefix
// required by RFC 6350 when no date is present.
func ParseDateAndOrTime(s string) (DateAndOrTime, error) {
	if strings.HasPrefix(s, "T") {
		t, err := ParseTime(s[1:])
		if err != nil {
			return DateAndOrTime{}, err
		}
		return DateAndOrTime{Time: &t}, nil
	}
	if dt, err := ParseDateTime(s); err == nil {
		return DateAndOrTime{DateTime: &dt}, nil
	}
	if d, err := ParseDate(s); err == nil {
		return DateAndOrTime{Date: &d}, nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return DateAndOrTime{}, newError(ErrInvalidDate, s)
	}
	return DateAndOrTime{Time: &t}, nil
}

// String formats the value; a standalone time gets the "T" prefix.
func (d DateAndOrTime) String() string {
	switch {
	case d.DateTime != nil:
		return d.DateTime.String()
	case d.Date != nil:
		return d.Date.String()
	case d.Time != nil:
		return "T" + d.Time.String()
	}
	return ""
}

// ParseTimestamp parses a complete date and time of the strict form
// YYYYMMDDThhmmss, optionally followed by "Z" or a ±hhmm zone.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{"20060102T150405Z0700", "20060102T150405"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	_, err := time.Parse("20060102T150405Z0700", s)
	return time.Time{}, wrapError(ErrTimeParse, s, err)
}

// FormatTimestamp renders a timestamp in the form expected by REV.
func FormatTimestamp(t time.Time) string {
	return t.Format("20060102T150405Z0700")
}

// ParseBoolean parses a case-insensitive TRUE or FALSE.
func ParseBoolean(s string) (bool, error) {
	switch strings.ToUpper(s) {
	case "TRUE":
		return true, nil
	case "FALSE":
		return false, nil
	}
	return false, newError(ErrInvalidBoolean, s)
}

// Name is the value of the N property: the five components of a
// structured name, each a comma-separated list. See RFC 6350 section
// 6.2.2.
type Name struct {
	Family     []string
	Given      []string
	Additional []string
	Prefixes   []string
	Suffixes   []string
}

// ParseName parses an N property value of exactly five semicolon
// separated components.
func ParseName(s string) (Name, error) {
	fields := splitUnescaped(s, ';')
	if len(fields) != 5 {
		return Name{}, newError(ErrInvalidPropertyValue, s)
	}
	return Name{
		Family:     unescapeList(fields[0]),
		Given:      unescapeList(fields[1]),
		Additional: unescapeList(fields[2]),
		Prefixes:   unescapeList(fields[3]),
		Suffixes:   unescapeList(fields[4]),
	}, nil
}

// String formats the structured name.
func (n Name) String() string {
	comps := [][]string{n.Family, n.Given, n.Additional, n.Prefixes, n.Suffixes}
	parts := make([]string, len(comps))
	for i, c := range comps {
		parts[i] = escapeList(c)
	}
	return strings.Join(parts, ";")
}

// DeliveryAddress is the value of an ADR property: the seven components
// of a delivery address. Empty fields are absent.
type DeliveryAddress struct {
	PostOfficeBox   string
	ExtendedAddress string
	StreetAddress   string
	Locality        string
	Region          string
	PostalCode      string
	CountryName     string
}

// ParseDeliveryAddress parses an ADR property value of exactly seven
// semicolon separated fields.
func ParseDeliveryAddress(s string) (DeliveryAddress, error) {
	fields := splitUnescaped(s, ';')
	if len(fields) != 7 {
		return DeliveryAddress{}, newError(ErrInvalidAddress, s)
	}
	for i, f := range fields {
		fields[i] = unescapeText(f)
	}
	return DeliveryAddress{
		PostOfficeBox:   fields[0],
		ExtendedAddress: fields[1],
		StreetAddress:   fields[2],
		Locality:        fields[3],
		Region:          fields[4],
		PostalCode:      fields[5],
		CountryName:     fields[6],
	}, nil
}

// String formats the address as seven semicolon separated fields.
func (a DeliveryAddress) String() string {
	fields := []string{
		a.PostOfficeBox, a.ExtendedAddress, a.StreetAddress,
		a.Locality, a.Region, a.PostalCode, a.CountryName,
	}
	for i, f := range fields {
		fields[i] = escapeText(f)
	}
	return strings.Join(fields, ";")
}

// ClientPidMap is the value of a CLIENTPIDMAP property, associating a
// PID source integer with a globally unique URI.
type ClientPidMap struct {
	Source int
	URI    *url.URL
}

// ParseClientPidMap parses a CLIENTPIDMAP value of the form
// `integer ";" URI`.
func ParseClientPidMap(s string) (ClientPidMap, error) {
	srcPart, uriPart, found := strings.Cut(s, ";")
	if !found {
		return ClientPidMap{}, newError(ErrInvalidClientPidMap, s)
	}
	src, err := strconv.Atoi(srcPart)
	if err != nil || src < 1 {
		return ClientPidMap{}, newError(ErrInvalidClientPidMap, s)
	}
	u, err := url.Parse(uriPart)
	if err != nil {
		return ClientPidMap{}, wrapError(ErrURIParse, uriPart, err)
	}
	return ClientPidMap{Source: src, URI: u}, nil
}

// String formats the client PID map.
func (c ClientPidMap) String() string {
	return strconv.Itoa(c.Source) + ";" + c.URI.String()
}

// PID is a single PID parameter value: a property identifier with an
// optional source identifier referring to a CLIENTPIDMAP.
type PID struct {
	Local     int
	Source    int
	HasSource bool
}

// ParsePID parses a PID parameter value of the form
// `digit+ ["." digit+]`.
func ParsePID(s string) (PID, error) {
	localPart, srcPart, found := strings.Cut(s, ".")
	if !allDigits(localPart) || localPart == "" {
		return PID{}, newError(ErrInvalidPid, s)
	}
	pid := PID{Local: atoi(localPart)}
	if found {
		if !allDigits(srcPart) || srcPart == "" {
			return PID{}, newError(ErrInvalidPid, s)
		}
		pid.Source = atoi(srcPart)
		pid.HasSource = true
	}
	return pid, nil
}

// String formats the PID value.
func (p PID) String() string {
	if p.HasSource {
		return strconv.Itoa(p.Local) + "." + strconv.Itoa(p.Source)
	}
	return strconv.Itoa(p.Local)
}

// DataURI decodes an RFC 2397 data: URI as used for inline PHOTO, LOGO,
// SOUND and KEY values, returning the declared media type and the decoded
// payload.
func DataURI(u *url.URL) (mediaType string, data []byte, err error) {
	if u.Scheme != "data" {
		return "", nil, newError(ErrInvalidPropertyValue, u.String())
	}
	meta, payload, found := strings.Cut(u.Opaque, ",")
	if !found {
		return "", nil, newError(ErrInvalidPropertyValue, u.String())
	}
	isBase64 := strings.HasSuffix(meta, ";base64")
	meta = strings.TrimSuffix(meta, ";base64")
	if meta != "" {
		mediaType, _, err = mime.ParseMediaType(meta)
		if err != nil {
			return "", nil, wrapError(ErrMediaTypeParse, meta, err)
		}
	}
	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, wrapError(ErrBase64Decode, payload, err)
		}
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return "", nil, wrapError(ErrURIParse, payload, err)
		}
		data = []byte(unescaped)
	}
	return mediaType, data, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
