package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

var (
	// ErrLoneSurrogate is returned for a \u escape naming half of a UTF-16
	// surrogate pair without its partner. Decoding it would silently turn the
	// string into U+FFFD.
	ErrLoneSurrogate = errors.New("string contains an unpaired surrogate escape")
	// ErrInvalidUTF8 is returned when a value holds bytes that are not UTF-8.
	ErrInvalidUTF8 = errors.New("value is not valid UTF-8")
)

type frame struct {
	object bool
	count  int
}

// Canonical re-encodes a single JSON value in compact form. Object keys keep
// their input order, numbers keep their literal text and strings are written
// with non-ASCII characters as-is rather than \u escapes.
func Canonical(raw []byte) ([]byte, error) {
	if !utf8.Valid(raw) {
		return nil, ErrInvalidUTF8
	}
	if err := checkSurrogates(raw); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	out := bytes.NewBuffer(make([]byte, 0, len(raw)))
	var scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)

	var stack []*frame
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if d, ok := tok.(json.Delim); ok && (d == '}' || d == ']') {
			stack = stack[:len(stack)-1]
			out.WriteByte(byte(d))
			continue
		}

		if n := len(stack); n > 0 {
			f := stack[n-1]
			switch {
			case f.object && f.count%2 == 1:
				out.WriteByte(':')
			case f.count > 0:
				out.WriteByte(',')
			}
			f.count++
		}

		switch v := tok.(type) {
		case json.Delim:
			out.WriteByte(byte(v))
			stack = append(stack, &frame{object: v == '{'})
		case string:
			scratch.Reset()
			if err := enc.Encode(v); err != nil {
				return nil, err
			}
			out.Write(bytes.TrimSuffix(scratch.Bytes(), []byte("\n")))
		case json.Number:
			out.WriteString(v.String())
		case bool:
			out.WriteString(strconv.FormatBool(v))
		case nil:
			out.WriteString("null")
		default:
			return nil, fmt.Errorf("unexpected token %T", v)
		}
	}

	if len(stack) != 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return out.Bytes(), nil
}

// checkSurrogates scans the string literals in raw for \u escapes in the
// surrogate range that do not form a high+low pair.
func checkSurrogates(raw []byte) error {
	inString := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			continue
		}
		switch c {
		case '"':
			inString = false
		case '\\':
			if i+1 < len(raw) && raw[i+1] != 'u' {
				i++
				continue
			}
			r, ok := hexRune(raw, i+2)
			if !ok {
				// malformed escape; the decoder reports it
				return nil
			}
			if !utf16.IsSurrogate(r) {
				i += 5
				continue
			}
			next := i + 6
			if r < 0xDC00 && next+1 < len(raw) && raw[next] == '\\' && raw[next+1] == 'u' {
				if lo, ok := hexRune(raw, next+2); ok && lo >= 0xDC00 && lo <= 0xDFFF {
					i = next + 5
					continue
				}
			}
			return fmt.Errorf("%w at byte %d", ErrLoneSurrogate, i)
		}
	}
	return nil
}

func hexRune(b []byte, at int) (rune, bool) {
	if at < 0 || at+4 > len(b) {
		return 0, false
	}
	v, err := strconv.ParseUint(string(b[at:at+4]), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
