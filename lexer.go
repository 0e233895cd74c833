package vcard

// item represents a token returned from the content-line lexer.
type item struct {
	typ    itemType
	val    string
	quoted bool // parameter value was enclosed in double quotes
}

// itemType identifies the type of lexed items.
type itemType int

const (
	itemEOL itemType = iota
	itemGroup
	itemName
	itemParamName
	itemParamValue
	itemValue
)

// lexer tokenizes a single logical content line:
//
//	[group "."] name *(";" param-name "=" param-value) ":" value
//
// Separators are consumed internally and drive the state transitions; the
// items delivered to the parser are the names and values between them. The
// lexer returns raw substrings; escape sequences are decoded by the value
// sub-parsers.
type lexer struct {
	input string
	pos   int
	line  int
	state lexState
	group bool // a group token has already been produced
}

type lexState int

const (
	lexName lexState = iota
	lexAfterName
	lexParamValue
	lexValue
	lexDone
)

func newLexer(input string, line int) *lexer {
	return &lexer{input: input, line: line}
}

func (l *lexer) errorf(code ErrorCode, value string) (item, error) {
	return item{}, &Error{Code: code, Value: value, Line: l.line}
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '-'
}

func isControl(c byte) bool {
	return c < 0x20 && c != '\t'
}

// scanName consumes a run of name characters. Control characters take
// precedence over shape errors.
func (l *lexer) scanName() (string, error) {
	start := l.pos
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if isControl(c) {
			return "", &Error{Code: ErrControlCharacter, Value: string(c), Line: l.line}
		}
		if !isNameChar(c) {
			break
		}
		l.pos++
	}
	if l.pos == start {
		rest := l.input[start:]
		return "", &Error{Code: ErrIncorrectToken, Value: rest, Line: l.line}
	}
	return l.input[start:l.pos], nil
}

// next returns the next item on the line. After itemValue it yields
// itemEOL forever.
func (l *lexer) next() (item, error) {
	switch l.state {
	case lexName:
		name, err := l.scanName()
		if err != nil {
			return item{}, err
		}
		if !l.group && l.pos < len(l.input) && l.input[l.pos] == '.' {
			l.pos++
			l.group = true
			return item{typ: itemGroup, val: name}, nil
		}
		l.state = lexAfterName
		return item{typ: itemName, val: name}, nil

	case lexAfterName:
		if l.pos >= len(l.input) {
			return l.errorf(ErrDelimiterExpected, "")
		}
		switch c := l.input[l.pos]; {
		case c == ';':
			l.pos++
			name, err := l.scanName()
			if err != nil {
				return item{}, err
			}
			if l.pos >= len(l.input) || l.input[l.pos] != '=' {
				return l.errorf(ErrDelimiterExpected, "")
			}
			l.pos++
			l.state = lexParamValue
			return item{typ: itemParamName, val: name}, nil
		case c == ':':
			l.pos++
			l.state = lexValue
			return l.next()
		case isControl(c):
			return l.errorf(ErrControlCharacter, string(c))
		default:
			return l.errorf(ErrDelimiterExpected, string(c))
		}

	case lexParamValue:
		if l.pos < len(l.input) && l.input[l.pos] == '"' {
			l.pos++
			start := l.pos
			for l.pos < len(l.input) && l.input[l.pos] != '"' {
				l.pos++
			}
			if l.pos >= len(l.input) {
				return l.errorf(ErrNotQuoted, l.input[start:])
			}
			val := l.input[start:l.pos]
			l.pos++
			if err := l.paramValueEnd(); err != nil {
				return item{}, err
			}
			return item{typ: itemParamValue, val: val, quoted: true}, nil
		}
		start := l.pos
		for l.pos < len(l.input) {
			c := l.input[l.pos]
			if c == ';' || c == ':' || c == ',' {
				break
			}
			if isControl(c) {
				return l.errorf(ErrControlCharacter, string(c))
			}
			l.pos++
		}
		val := l.input[start:l.pos]
		if err := l.paramValueEnd(); err != nil {
			return item{}, err
		}
		return item{typ: itemParamValue, val: val}, nil

	case lexValue:
		val := l.input[l.pos:]
		for i := 0; i < len(val); i++ {
			if isControl(val[i]) {
				return l.errorf(ErrControlCharacter, string(val[i]))
			}
		}
		l.pos = len(l.input)
		l.state = lexDone
		return item{typ: itemValue, val: val}, nil
	}
	return item{typ: itemEOL}, nil
}

// paramValueEnd consumes the separator that terminates a parameter value.
// A comma continues the value list of the current parameter, a semicolon
// starts the next parameter and a colon starts the property value.
func (l *lexer) paramValueEnd() error {
	if l.pos >= len(l.input) {
		return &Error{Code: ErrDelimiterExpected, Line: l.line}
	}
	switch c := l.input[l.pos]; c {
	case ',':
		l.pos++
	case ';':
		// leave the semicolon for lexAfterName to consume
		l.state = lexAfterName
	case ':':
		l.pos++
		l.state = lexValue
	default:
		return &Error{Code: ErrDelimiterExpected, Value: string(c), Line: l.line}
	}
	return nil
}
