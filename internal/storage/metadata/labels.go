package metadata

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FormatLabel renders a multi-part column key the way pyarrow stores pandas
// tuple labels: the Python repr of a tuple of strings, e.g. ('ltp', 'AAPL').
func FormatLabel(parts []string) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range parts {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(p))
	}
	if len(parts) == 1 {
		b.WriteByte(',')
	}
	b.WriteByte(')')
	return b.String()
}

// quote mimics Python's str repr: single quotes unless the text holds a
// single quote and no double quote. Non-printable runes are written as
// \xNN, \uNNNN or \UNNNNNNNN.
func quote(s string) string {
	q := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var b strings.Builder
	b.WriteRune(q)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			fmt.Fprintf(&b, `\x%02x`, s[i])
			i++
			continue
		}
		i += size

		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == q:
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteRune(q)
	return b.String()
}

// ParseLabel decodes a tuple label produced by pyarrow (or FormatLabel).
// Quoted elements are unescaped; bare elements (numbers, None) are kept as text.
func ParseLabel(label string) ([]string, error) {
	s := strings.TrimSpace(label)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("label %q is not a tuple", label)
	}
	s = s[1 : len(s)-1]

	var parts []string
	i := 0
	for {
		for i < len(s) && s[i] == ' ' {
			i++
		}
		if i >= len(s) {
			break
		}

		var part string
		var err error
		if s[i] == '\'' || s[i] == '"' {
			part, i, err = readQuoted(s, i)
			if err != nil {
				return nil, fmt.Errorf("label %q: %w", label, err)
			}
		} else {
			start := i
			for i < len(s) && s[i] != ',' {
				i++
			}
			part = strings.TrimSpace(s[start:i])
		}
		parts = append(parts, part)

		for i < len(s) && s[i] == ' ' {
			i++
		}
		if i >= len(s) {
			break
		}
		if s[i] != ',' {
			return nil, fmt.Errorf("label %q: unexpected %q at offset %d", label, s[i], i+1)
		}
		i++
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("label %q is an empty tuple", label)
	}
	return parts, nil
}

func readQuoted(s string, i int) (string, int, error) {
	q := s[i]
	i++
	var b strings.Builder
	for i < len(s) {
		c := s[i]
		switch {
		case c == q:
			return b.String(), i + 1, nil
		case c == '\\' && i+1 < len(s):
			i++
			switch e := s[i]; e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'a':
				b.WriteByte('\a')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'v':
				b.WriteByte('\v')
			case '\\', '\'', '"':
				b.WriteByte(e)
			case 'x', 'u', 'U':
				digits := 2
				switch e {
				case 'u':
					digits = 4
				case 'U':
					digits = 8
				}
				r, err := hexRune(s, i+1, digits)
				if err != nil {
					return "", i, err
				}
				b.WriteRune(r)
				i += digits
			default:
				if e >= '0' && e <= '7' {
					n := 1
					for n < 3 && i+n < len(s) && s[i+n] >= '0' && s[i+n] <= '7' {
						n++
					}
					v, _ := strconv.ParseUint(s[i:i+n], 8, 32)
					b.WriteRune(rune(v))
					i += n - 1
					break
				}
				// unknown escapes keep their backslash, as in Python
				b.WriteByte('\\')
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
		i++
	}
	return "", i, fmt.Errorf("unterminated string")
}

// hexRune decodes n hex digits of s starting at i into a rune
func hexRune(s string, i, n int) (rune, error) {
	if i+n > len(s) {
		return 0, fmt.Errorf("truncated \\%c escape at offset %d", s[i-1], i)
	}
	v, err := strconv.ParseUint(s[i:i+n], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid \\%c escape %q", s[i-1], s[i:i+n])
	}
	if !utf8.ValidRune(rune(v)) {
		return 0, fmt.Errorf("escape \\%c%s is not a valid code point", s[i-1], s[i:i+n])
	}
	return rune(v), nil
}
