package output

import (
	"bufio"
	"os"
	"path/filepath"
)

// WriteJSONL writes each item on its own line. Items must already be compact.
func WriteJSONL(path string, items [][]byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := bufio.NewWriter(f)
	for _, item := range items {
		if _, err := writer.Write(item); err != nil {
			return err
		}
		if err := writer.WriteByte('\n'); err != nil {
			return err
		}
	}

	if err := writer.Flush(); err != nil {
		return err
	}
	return f.Close()
}
