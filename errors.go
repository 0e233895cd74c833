package vcard

import (
	"fmt"
	"strconv"
)

// ErrorCode identifies the kind of failure encountered while parsing
// vCard text.
type ErrorCode int

const (
	// ErrTokenExpected indicates that a token was expected but the end of
	// the input was reached.
	ErrTokenExpected ErrorCode = iota + 1
	// ErrVersionMisplaced indicates that VERSION:4.0 was not the first
	// property of the card.
	ErrVersionMisplaced
	// ErrControlCharacter indicates a raw control character outside a
	// quoted string.
	ErrControlCharacter
	// ErrIncorrectToken indicates a token of an unexpected shape.
	ErrIncorrectToken
	// ErrDelimiterExpected indicates a missing property or parameter
	// delimiter.
	ErrDelimiterExpected
	// ErrNotQuoted indicates a parameter value that must be enclosed in
	// double quotes but was not.
	ErrNotQuoted

	// ErrUnknownPropertyName indicates an unsupported property name.
	ErrUnknownPropertyName
	// ErrUnknownParameter indicates an unsupported parameter name.
	ErrUnknownParameter
	// ErrUnknownValueType indicates an unsupported VALUE parameter value.
	ErrUnknownValueType
	// ErrUnknownKind indicates an unsupported KIND value.
	ErrUnknownKind
	// ErrUnknownSex indicates an unsupported sex component in GENDER.
	ErrUnknownSex
	// ErrUnknownRelatedType indicates an unsupported TYPE value on RELATED.
	ErrUnknownRelatedType
	// ErrUnknownTelephoneType indicates an unsupported TYPE value on TEL.
	ErrUnknownTelephoneType
	// ErrCharsetParameter indicates a CHARSET other than UTF-8.
	ErrCharsetParameter

	// ErrInvalidPropertyValue indicates a malformed property value.
	ErrInvalidPropertyValue
	// ErrInvalidTime indicates a malformed time.
	ErrInvalidTime
	// ErrInvalidDate indicates a malformed or out-of-range date.
	ErrInvalidDate
	// ErrInvalidDateTime indicates a malformed date-time, typically a
	// missing "T" delimiter.
	ErrInvalidDateTime
	// ErrInvalidAddress indicates a malformed delivery address.
	ErrInvalidAddress
	// ErrInvalidBoolean indicates a value that is not TRUE or FALSE.
	ErrInvalidBoolean
	// ErrInvalidClientPidMap indicates a malformed CLIENTPIDMAP value.
	ErrInvalidClientPidMap
	// ErrInvalidUTCOffset indicates a malformed UTC offset.
	ErrInvalidUTCOffset
	// ErrInvalidPid indicates a malformed PID parameter value.
	ErrInvalidPid
	// ErrPrefOutOfRange indicates a PREF outside 1..100.
	ErrPrefOutOfRange

	// ErrOnlyOnce indicates a property that may appear at most once but
	// appeared again.
	ErrOnlyOnce
	// ErrNoFormattedName indicates a card without an FN property.
	ErrNoFormattedName
	// ErrNoSex indicates a GENDER value missing its sex component.
	ErrNoSex
	// ErrInvalidLabel indicates a LABEL parameter on a property other
	// than ADR.
	ErrInvalidLabel
	// ErrTypeParameter indicates a TYPE parameter on a property that does
	// not support it.
	ErrTypeParameter
	// ErrMemberRequiresGroup indicates a MEMBER property on a card whose
	// KIND is not group.
	ErrMemberRequiresGroup
	// ErrClientPidMapPidNotAllowed indicates a PID parameter on
	// CLIENTPIDMAP.
	ErrClientPidMapPidNotAllowed
	// ErrUnsupportedValueType indicates a VALUE parameter naming a value
	// type the property does not permit.
	ErrUnsupportedValueType

	// ErrURIParse wraps an error from the URI parser.
	ErrURIParse
	// ErrLanguageParse wraps an error from the language-tag parser.
	ErrLanguageParse
	// ErrNumberParse wraps an error from the integer or float parser.
	ErrNumberParse
	// ErrTimeParse wraps an error from the timestamp parser.
	ErrTimeParse
	// ErrMediaTypeParse wraps an error from the media-type parser.
	ErrMediaTypeParse
	// ErrBase64Decode wraps an error from the base64 decoder.
	ErrBase64Decode
)

// Error describes a failure encountered while parsing vCard text. Value
// holds the offending token or value when one is available, Property the
// name of the property being parsed, and Line the 1-based logical line
// number within the input. Delegated failures keep their cause in Err.
type Error struct {
	Code     ErrorCode
	Value    string
	Property string
	Line     int
	Err      error
}

func newError(code ErrorCode, value string) *Error {
	return &Error{Code: code, Value: value}
}

func wrapError(code ErrorCode, value string, err error) *Error {
	return &Error{Code: code, Value: value, Err: err}
}

// Unwrap returns the delegated cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.message()
	if e.Line > 0 {
		return "vcard: line " + strconv.Itoa(e.Line) + ": " + msg
	}
	return "vcard: " + msg
}

func (e *Error) message() string {
	switch e.Code {
	case ErrTokenExpected:
		return "input token was expected but reached EOF"
	case ErrVersionMisplaced:
		return "version must be the first property"
	case ErrControlCharacter:
		return fmt.Sprintf("control characters are not allowed, got %q", e.Value)
	case ErrIncorrectToken:
		return fmt.Sprintf("input token %q was incorrect", e.Value)
	case ErrDelimiterExpected:
		return "property or parameter delimiter expected"
	case ErrNotQuoted:
		return fmt.Sprintf("%q must be enclosed in quotes", e.Value)
	case ErrUnknownPropertyName:
		return fmt.Sprintf("property name %q is not supported", e.Value)
	case ErrUnknownParameter:
		return fmt.Sprintf("unknown parameter %q", e.Value)
	case ErrUnknownValueType:
		return fmt.Sprintf("value type %q is not supported", e.Value)
	case ErrUnknownKind:
		return fmt.Sprintf("kind %q is not supported", e.Value)
	case ErrUnknownSex:
		return fmt.Sprintf("sex %q is not supported", e.Value)
	case ErrUnknownRelatedType:
		return fmt.Sprintf("related type value %q is not supported", e.Value)
	case ErrUnknownTelephoneType:
		return fmt.Sprintf("telephone type value %q is not supported", e.Value)
	case ErrCharsetParameter:
		return fmt.Sprintf("CHARSET=%q is invalid, expected UTF-8", e.Value)
	case ErrInvalidPropertyValue:
		return "property value is invalid"
	case ErrInvalidTime:
		return fmt.Sprintf("time %q is invalid", e.Value)
	case ErrInvalidDate:
		return fmt.Sprintf("date %q is invalid", e.Value)
	case ErrInvalidDateTime:
		return fmt.Sprintf("date time %q is not valid, maybe missing 'T' delimiter", e.Value)
	case ErrInvalidAddress:
		return fmt.Sprintf("delivery address %q is invalid", e.Value)
	case ErrInvalidBoolean:
		return fmt.Sprintf("value %q is not a valid boolean", e.Value)
	case ErrInvalidClientPidMap:
		return fmt.Sprintf("client PID map %q is not valid", e.Value)
	case ErrInvalidUTCOffset:
		return fmt.Sprintf("UTC offset %q is invalid", e.Value)
	case ErrInvalidPid:
		return fmt.Sprintf("pid %q is invalid", e.Value)
	case ErrPrefOutOfRange:
		return fmt.Sprintf("pref %q is out of bounds, must be between 1 and 100", e.Value)
	case ErrOnlyOnce:
		return fmt.Sprintf("property %q may only appear exactly once", e.Value)
	case ErrNoFormattedName:
		return "formatted name (FN) is required"
	case ErrNoSex:
		return "gender value is missing sex"
	case ErrInvalidLabel:
		return fmt.Sprintf("parameter LABEL can only be applied to ADR but used on %q", e.Value)
	case ErrTypeParameter:
		return fmt.Sprintf("TYPE parameter is not supported for property %q", e.Value)
	case ErrMemberRequiresGroup:
		return "member property is only allowed when the kind is group"
	case ErrClientPidMapPidNotAllowed:
		return "PID parameter not allowed for CLIENTPIDMAP"
	case ErrUnsupportedValueType:
		return fmt.Sprintf("value %q is not supported in this context %q", e.Value, e.Property)
	case ErrURIParse:
		return fmt.Sprintf("invalid URI %q: %v", e.Value, e.Err)
	case ErrLanguageParse:
		return fmt.Sprintf("invalid language tag %q: %v", e.Value, e.Err)
	case ErrNumberParse:
		return fmt.Sprintf("invalid number %q: %v", e.Value, e.Err)
	case ErrTimeParse:
		return fmt.Sprintf("invalid timestamp %q: %v", e.Value, e.Err)
	case ErrMediaTypeParse:
		return fmt.Sprintf("invalid media type %q: %v", e.Value, e.Err)
	case ErrBase64Decode:
		return fmt.Sprintf("invalid base64 data: %v", e.Err)
	}
	return "parse error"
}

// Is reports whether target is an *Error with the same code, so that
// errors.Is can match against a bare &Error{Code: ...}.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != 0 && t.Code != e.Code {
		return false
	}
	if t.Value != "" && t.Value != e.Value {
		return false
	}
	return true
}
