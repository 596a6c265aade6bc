// Package textio provides the byte-level reading and writing primitives
// behind the text serialization formats: backslash escaping, literal
// quoting, CSV fields, JSON strings and XML character data. Descriptors
// build their row-level text encodings out of these helpers.
package textio

import (
	"io"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/colbase/colbase/pkg/typerr"
)

// Reader is the byte source used by every text and binary deserializer.
// It adds single-byte pushback and bounded lookahead on top of io.Reader;
// *bufio.Reader satisfies it.
type Reader interface {
	io.Reader
	io.ByteScanner
	Peek(n int) ([]byte, error)
}

// WriteEscapedString writes s with control and delimiter characters
// backslash-escaped, without surrounding quotes.
func WriteEscapedString(w io.Writer, s string) error {
	return writeEscaped(w, s, 0)
}

// WriteQuotedString writes s as a single-quoted literal suitable for
// inclusion in a query.
func WriteQuotedString(w io.Writer, s string) error {
	if _, err := w.Write([]byte{'\''}); err != nil {
		return err
	}
	if err := writeEscaped(w, s, '\''); err != nil {
		return err
	}
	_, err := w.Write([]byte{'\''})
	return err
}

// writeEscaped escapes backslash, control characters and, when quote is
// nonzero, the quote character itself.
func writeEscaped(w io.Writer, s string, quote byte) error {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case 0:
			sb.WriteString(`\0`)
		case '\'', '"':
			if c == quote {
				sb.WriteByte('\\')
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// unescapeByte maps the byte after a backslash to the byte it denotes.
func unescapeByte(c byte) byte {
	switch c {
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case '0':
		return 0
	default:
		return c
	}
}

// ReadEscapedString reads a backslash-escaped string terminated by an
// unescaped tab, newline or end of input. The terminator is not consumed.
func ReadEscapedString(r Reader) (string, error) {
	var sb strings.Builder
	for {
		c, err := r.ReadByte()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		switch c {
		case '\t', '\n':
			if err := r.UnreadByte(); err != nil {
				return "", err
			}
			return sb.String(), nil
		case '\\':
			next, err := r.ReadByte()
			if err != nil {
				return "", typerr.Malformedf("escape sequence cut short")
			}
			sb.WriteByte(unescapeByte(next))
		default:
			sb.WriteByte(c)
		}
	}
}

// ReadQuotedString reads a single-quoted literal with backslash escapes.
func ReadQuotedString(r Reader) (string, error) {
	c, err := r.ReadByte()
	if err != nil {
		return "", typerr.FromIO(err, "quoted string")
	}
	if c != '\'' {
		return "", typerr.Malformedf("expected opening quote, found %q", c)
	}
	var sb strings.Builder
	for {
		c, err := r.ReadByte()
		if err != nil {
			return "", typerr.FromIO(err, "quoted string")
		}
		switch c {
		case '\'':
			return sb.String(), nil
		case '\\':
			next, err := r.ReadByte()
			if err != nil {
				return "", typerr.FromIO(err, "quoted string")
			}
			sb.WriteByte(unescapeByte(next))
		default:
			sb.WriteByte(c)
		}
	}
}

// WriteCSVString writes s as a double-quoted CSV field, doubling any
// embedded double quotes.
func WriteCSVString(w io.Writer, s string) error {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			sb.WriteString(`""`)
		} else {
			sb.WriteByte(s[i])
		}
	}
	sb.WriteByte('"')
	_, err := io.WriteString(w, sb.String())
	return err
}

// ReadCSVField reads one CSV field. Quoted fields follow the doubling
// convention; unquoted fields run until the delimiter, a line break or
// end of input. The delimiter is left unconsumed in the stream.
func ReadCSVField(r Reader, delimiter byte) (string, error) {
	first, err := r.Peek(1)
	if err != nil {
		if err == io.EOF {
			return "", typerr.Exhaustedf("CSV field")
		}
		return "", err
	}
	if first[0] == '"' {
		return readCSVQuoted(r)
	}
	var sb strings.Builder
	for {
		c, err := r.ReadByte()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		if c == delimiter || c == '\n' || c == '\r' {
			if err := r.UnreadByte(); err != nil {
				return "", err
			}
			return sb.String(), nil
		}
		sb.WriteByte(c)
	}
}

func readCSVQuoted(r Reader) (string, error) {
	if _, err := r.ReadByte(); err != nil { // opening quote
		return "", typerr.FromIO(err, "CSV field")
	}
	var sb strings.Builder
	for {
		c, err := r.ReadByte()
		if err != nil {
			return "", typerr.FromIO(err, "CSV field")
		}
		if c != '"' {
			sb.WriteByte(c)
			continue
		}
		next, err := r.Peek(1)
		if err == nil && next[0] == '"' {
			_, _ = r.ReadByte()
			sb.WriteByte('"')
			continue
		}
		return sb.String(), nil
	}
}

const hexDigits = "0123456789abcdef"

// WriteJSONString writes s as a JSON string literal.
func WriteJSONString(w io.Writer, s string) error {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			sb.WriteString(`\"`)
		case c == '\\':
			sb.WriteString(`\\`)
		case c == '\b':
			sb.WriteString(`\b`)
		case c == '\f':
			sb.WriteString(`\f`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c < 0x20:
			sb.WriteString(`\u00`)
			sb.WriteByte(hexDigits[c>>4])
			sb.WriteByte(hexDigits[c&0xf])
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	_, err := io.WriteString(w, sb.String())
	return err
}

// ReadJSONString reads a JSON string literal, including \uXXXX escapes
// and surrogate pairs.
func ReadJSONString(r Reader) (string, error) {
	c, err := r.ReadByte()
	if err != nil {
		return "", typerr.FromIO(err, "JSON string")
	}
	if c != '"' {
		return "", typerr.Malformedf("expected opening double quote, found %q", c)
	}
	var sb strings.Builder
	for {
		c, err := r.ReadByte()
		if err != nil {
			return "", typerr.FromIO(err, "JSON string")
		}
		switch c {
		case '"':
			return sb.String(), nil
		case '\\':
			if err := readJSONEscape(r, &sb); err != nil {
				return "", err
			}
		default:
			sb.WriteByte(c)
		}
	}
}

func readJSONEscape(r Reader, sb *strings.Builder) error {
	c, err := r.ReadByte()
	if err != nil {
		return typerr.FromIO(err, "JSON string")
	}
	switch c {
	case '"', '\\', '/':
		sb.WriteByte(c)
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'u':
		cp, err := readHex4(r)
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(rune(cp)) {
			pair, err := r.Peek(2)
			if err == nil && pair[0] == '\\' && pair[1] == 'u' {
				_, _ = r.ReadByte()
				_, _ = r.ReadByte()
				low, err := readHex4(r)
				if err != nil {
					return err
				}
				sb.WriteRune(utf16.DecodeRune(rune(cp), rune(low)))
				return nil
			}
			sb.WriteRune(utf8.RuneError)
			return nil
		}
		sb.WriteRune(rune(cp))
	default:
		return typerr.Malformedf("invalid JSON escape %q", c)
	}
	return nil
}

func readHex4(r Reader) (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		c, err := r.ReadByte()
		if err != nil {
			return 0, typerr.FromIO(err, "JSON unicode escape")
		}
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint32(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint32(c-'A') + 10
		default:
			return 0, typerr.Malformedf("invalid hex digit %q in JSON escape", c)
		}
	}
	return v, nil
}

// WriteXMLString writes s as XML character data, escaping markup bytes.
func WriteXMLString(w io.Writer, s string) error {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '&':
			sb.WriteString("&amp;")
		default:
			sb.WriteByte(s[i])
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// ReadNumericField reads the longest prefix of bytes that can appear in
// a numeric literal. The byte that stops the scan is not consumed.
func ReadNumericField(r Reader) (string, error) {
	var sb strings.Builder
	for {
		c, err := r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.' || c == 'e' || c == 'E' {
			sb.WriteByte(c)
			continue
		}
		if err := r.UnreadByte(); err != nil {
			return "", err
		}
		break
	}
	if sb.Len() == 0 {
		return "", typerr.Malformedf("expected a number")
	}
	return sb.String(), nil
}

// CheckBytes consumes the literal s if and only if the stream starts
// with it, reporting whether it did.
func CheckBytes(r Reader, s string) (bool, error) {
	got, err := r.Peek(len(s))
	if err != nil || len(got) < len(s) {
		// Too few bytes buffered: the literal cannot be present.
		return false, nil
	}
	if string(got) != s {
		return false, nil
	}
	for range s {
		if _, err := r.ReadByte(); err != nil {
			return false, err
		}
	}
	return true, nil
}

// SkipWhitespace consumes spaces, tabs, newlines and carriage returns.
func SkipWhitespace(r Reader) error {
	for {
		c, err := r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return r.UnreadByte()
		}
	}
}
