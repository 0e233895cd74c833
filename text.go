package vcard

import "strings"

// escapeText escapes the four characters that RFC 6350 section 3.4
// requires to be escaped in text values.
func escapeText(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			sb.WriteString(`\\`)
		case ',':
			sb.WriteString(`\,`)
		case ';':
			sb.WriteString(`\;`)
		case '\n':
			sb.WriteString(`\n`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// unescapeText decodes backslash escape sequences in a text value.
// Unrecognised sequences are kept verbatim.
func unescapeText(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			sb.WriteByte('\n')
		case ',', ';', '\\':
			sb.WriteByte(s[i])
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// splitUnescaped splits s on every occurrence of sep that is not
// preceded by an unescaped backslash.
func splitUnescaped(s string, sep byte) []string {
	var parts []string
	var start int
	escaped := false
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// unescapeList splits a comma-separated list and unescapes each element.
// An empty field yields an empty list.
func unescapeList(s string) []string {
	if s == "" {
		return nil
	}
	parts := splitUnescaped(s, ',')
	for i, p := range parts {
		parts[i] = unescapeText(p)
	}
	return parts
}

// escapeList renders a comma-separated list with per-element escaping.
func escapeList(elems []string) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = escapeText(e)
	}
	return strings.Join(parts, ",")
}
