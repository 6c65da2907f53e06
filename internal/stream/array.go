package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrEmptyInput is returned when the input holds no JSON value at all.
	ErrEmptyInput = errors.New("input contains no JSON value")
	// ErrNotArray is returned when the top-level value is not an array.
	ErrNotArray = errors.New("top-level JSON value is not an array")
	// ErrTrailingData is returned when content follows the closing bracket.
	ErrTrailingData = errors.New("unexpected data after top-level array")
)

// Item is one element of the top-level array in canonical compact form.
type Item struct {
	Index int
	Raw   []byte
}

// ArrayReader yields the elements of a top-level JSON array one at a time.
// Only the element being decoded is held in memory.
type ArrayReader struct {
	dec     *json.Decoder
	started bool
	done    bool
	index   int
}

// NewArrayReader returns a reader over r. Buffering is handled by the decoder.
func NewArrayReader(r io.Reader) *ArrayReader {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &ArrayReader{dec: dec}
}

// Next returns the next element, or io.EOF once the array is closed.
func (a *ArrayReader) Next() (Item, error) {
	if a.done {
		return Item{}, io.EOF
	}
	if !a.started {
		if err := a.open(); err != nil {
			return Item{}, err
		}
		a.started = true
	}

	if !a.dec.More() {
		if err := a.close(); err != nil {
			return Item{}, err
		}
		a.done = true
		return Item{}, io.EOF
	}

	var raw json.RawMessage
	if err := a.dec.Decode(&raw); err != nil {
		return Item{}, fmt.Errorf("item %d (offset %d): %w", a.index, a.dec.InputOffset(), err)
	}
	canon, err := Canonical(raw)
	if err != nil {
		return Item{}, fmt.Errorf("item %d: %w", a.index, err)
	}

	item := Item{Index: a.index, Raw: canon}
	a.index++
	return item, nil
}

// Count reports how many items have been returned so far.
func (a *ArrayReader) Count() int { return a.index }

func (a *ArrayReader) open() error {
	tok, err := a.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyInput
		}
		return fmt.Errorf("read array start: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return fmt.Errorf("%w: found %s", ErrNotArray, describe(tok))
	}
	return nil
}

func (a *ArrayReader) close() error {
	tok, err := a.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("read array end (offset %d): %w", a.dec.InputOffset(), err)
	}
	if d, ok := tok.(json.Delim); !ok || d != ']' {
		return fmt.Errorf("read array end: unexpected %s", describe(tok))
	}

	// Anything but EOF here means a second document or garbage.
	if _, err := a.dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTrailingData, err)
		}
		return ErrTrailingData
	}
	return nil
}

func describe(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		if v == '{' {
			return "object"
		}
		return fmt.Sprintf("%q", v.String())
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
