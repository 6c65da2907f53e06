package output

import (
	"fmt"
	"strings"
)

// Format selects how a chunk is laid out on disk.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// ParseFormat accepts "json" or "jsonl" in any case. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json or jsonl)", s)
	}
}

// Ext returns the file extension including the leading dot.
func (f Format) Ext() string {
	if f == FormatJSONL {
		return ".jsonl"
	}
	return ".json"
}

// Write stores items at path in this format.
func (f Format) Write(path string, items [][]byte, indent int) error {
	if f == FormatJSONL {
		return WriteJSONL(path, items)
	}
	return WriteArray(path, items, indent)
}
