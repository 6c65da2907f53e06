package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// DefaultIndent matches the two-space layout most JSON tooling produces.
const DefaultIndent = 2

// WriteArray writes items as a single JSON array. A positive indent puts each
// element on its own line and indents nested values by that many spaces; zero
// writes a compact array on one line.
func WriteArray(path string, items [][]byte, indent int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := bufio.NewWriter(f)
	if err := encodeArray(writer, items, indent); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func encodeArray(w *bufio.Writer, items [][]byte, indent int) error {
	if len(items) == 0 {
		_, err := w.WriteString("[]\n")
		return err
	}

	if indent <= 0 {
		w.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				w.WriteByte(',')
			}
			w.Write(item)
		}
		_, err := w.WriteString("]\n")
		return err
	}

	// json.Indent copies string contents verbatim, so literal non-ASCII
	// characters in the items survive.
	step := strings.Repeat(" ", indent)
	var buf bytes.Buffer
	w.WriteString("[\n")
	for i, item := range items {
		buf.Reset()
		if err := json.Indent(&buf, item, step, step); err != nil {
			return err
		}
		w.WriteString(step)
		w.Write(buf.Bytes())
		if i < len(items)-1 {
			w.WriteByte(',')
		}
		w.WriteByte('\n')
	}
	_, err := w.WriteString("]\n")
	return err
}
