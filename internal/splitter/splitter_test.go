package splitter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/natedelduca/json-split/internal/config"
	"github.com/natedelduca/json-split/internal/discover"
	"github.com/natedelduca/json-split/internal/output"
	"github.com/natedelduca/json-split/internal/stream"
)

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// str40 returns a JSON string literal exactly 40 bytes long.
func str40(c byte) string {
	return `"` + strings.Repeat(string(c), 38) + `"`
}

func readChunk(t *testing.T, path string) []json.RawMessage {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatalf("chunk %s is not a JSON array: %v", path, err)
	}
	return items
}

func decodeAll(t *testing.T, raw []byte) []any {
	t.Helper()
	var v []any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestSplit_BoundaryExample(t *testing.T) {
	input := "[" + str40('a') + "," + str40('b') + "," + str40('c') + "]"
	path := writeInput(t, "data.json", input)

	var progress bytes.Buffer
	res, err := Split(path, Options{MaxBytes: 100, Progress: &progress})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	if res.Files() != 2 {
		t.Fatalf("files = %d, want 2", res.Files())
	}
	if res.Chunks[0].Items != 2 || res.Chunks[0].Size != 80 {
		t.Errorf("chunk 1 = %+v, want 2 items / 80 bytes", res.Chunks[0])
	}
	if res.Chunks[1].Items != 1 || res.Chunks[1].Size != 40 {
		t.Errorf("chunk 2 = %+v, want 1 item / 40 bytes", res.Chunks[1])
	}

	dir := filepath.Dir(path)
	first := readChunk(t, filepath.Join(dir, "data_1.json"))
	second := readChunk(t, filepath.Join(dir, "data_2.json"))
	if len(first) != 2 || len(second) != 1 {
		t.Fatalf("on-disk item counts = %d/%d, want 2/1", len(first), len(second))
	}
	if string(second[0]) != str40('c') {
		t.Errorf("chunk 2 holds %s", second[0])
	}

	out := progress.String()
	for _, want := range []string{
		"created: " + filepath.Join(dir, "data_1.json") + " (2 items, 80 B)",
		"created: " + filepath.Join(dir, "data_2.json") + " (1 items, 40 B)",
		"split complete: 2 files created",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("progress missing %q:\n%s", want, out)
		}
	}
}

func TestSplit_DotFileInput(t *testing.T) {
	path := writeInput(t, ".data", "[1,2]")

	res, err := Split(path, Options{})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	want := filepath.Join(filepath.Dir(path), ".data_1.json")
	if res.Files() != 1 || res.Chunks[0].Path != want {
		t.Fatalf("chunks = %+v, want one chunk at %s", res.Chunks, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("chunk not written: %v", err)
	}
}

func TestSplit_EmptyArray(t *testing.T) {
	path := writeInput(t, "empty.json", "[]")

	var progress bytes.Buffer
	res, err := Split(path, Options{Progress: &progress})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if res.Files() != 0 || res.Items != 0 {
		t.Errorf("files/items = %d/%d, want 0/0", res.Files(), res.Items)
	}
	if !strings.Contains(progress.String(), "split complete: 0 files created") {
		t.Errorf("summary missing:\n%s", progress.String())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the input in the directory, found %d entries", len(entries))
	}
}

func TestSplit_SingleOversizedItem(t *testing.T) {
	big := `{"blob":"` + strings.Repeat("x", 1<<20+10) + `"}`
	path := writeInput(t, "big.json", "["+big+"]")

	var progress bytes.Buffer
	res, err := Split(path, Options{MaxSizeMB: 1, Progress: &progress})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if want := "(1 items, 1.0 MiB)"; !strings.Contains(progress.String(), want) {
		t.Errorf("progress missing %q:\n%s", want, progress.String())
	}
	if res.Files() != 1 || res.Chunks[0].Items != 1 {
		t.Fatalf("chunks = %+v, want one chunk with one item", res.Chunks)
	}
	if res.Chunks[0].Size <= res.Limit {
		t.Errorf("size %d should exceed limit %d", res.Chunks[0].Size, res.Limit)
	}
	items := readChunk(t, filepath.Join(filepath.Dir(path), "big_1.json"))
	if len(items) != 1 {
		t.Errorf("chunk holds %d items, want 1", len(items))
	}
}

func TestSplit_OversizedItemBetweenSmallOnes(t *testing.T) {
	input := `["aa","` + strings.Repeat("z", 200) + `","bb","cc"]`
	path := writeInput(t, "mix.json", input)

	res, err := Split(path, Options{MaxBytes: 50})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	var counts []int
	for _, c := range res.Chunks {
		counts = append(counts, c.Items)
	}
	if want := []int{1, 1, 2}; !reflect.DeepEqual(counts, want) {
		t.Errorf("item counts = %v, want %v", counts, want)
	}
}

func TestSplit_RoundTripAndSizeBound(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[\n")
	for i := 0; i < 250; i++ {
		if i > 0 {
			sb.WriteString(",\n")
		}
		fmt.Fprintf(&sb, `  {"id": %d, "name": "item-%d", "tags": ["t%d", "ü"], "score": %d.5}`, i, i, i%7, i)
	}
	sb.WriteString("\n]")
	input := sb.String()
	path := writeInput(t, "records.json", input)

	const limit = 512
	res, err := Split(path, Options{MaxBytes: limit})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if res.Items != 250 {
		t.Fatalf("items = %d, want 250", res.Items)
	}
	if res.Files() < 2 {
		t.Fatalf("expected several chunks, got %d", res.Files())
	}

	var joined []json.RawMessage
	for i, c := range res.Chunks {
		if want := filepath.Join(filepath.Dir(path), fmt.Sprintf("records_%d.json", i+1)); c.Path != want {
			t.Errorf("chunk %d path = %s, want %s", i, c.Path, want)
		}
		if c.Seq != i+1 {
			t.Errorf("chunk %d seq = %d", i, c.Seq)
		}

		items := readChunk(t, c.Path)
		if len(items) != c.Items {
			t.Errorf("chunk %d: %d items on disk, result says %d", c.Seq, len(items), c.Items)
		}
		var measured int64
		for _, it := range items {
			canon, err := stream.Canonical(it)
			if err != nil {
				t.Fatal(err)
			}
			measured += int64(len(canon))
		}
		if measured != c.Size {
			t.Errorf("chunk %d: measured %d bytes, result says %d", c.Seq, measured, c.Size)
		}
		if measured > limit && len(items) > 1 {
			t.Errorf("chunk %d: %d bytes over limit %d with %d items", c.Seq, measured, limit, len(items))
		}
		joined = append(joined, items...)
	}

	rejoined, err := json.Marshal(joined)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := decodeAll(t, rejoined), decodeAll(t, []byte(input)); !reflect.DeepEqual(got, want) {
		t.Error("concatenated chunks differ from the input array")
	}
}

func TestSplit_Idempotent(t *testing.T) {
	input := `[1, "two", {"three": 3}, [4, 4, 4, 4], "five five five", null, true]`
	path := writeInput(t, "again.json", input)

	first, err := Split(path, Options{MaxBytes: 20})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Split(path, Options{MaxBytes: 20})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Chunks, second.Chunks) {
		t.Errorf("runs differ:\n%+v\n%+v", first.Chunks, second.Chunks)
	}
}

func TestSplit_NonASCIIPreserved(t *testing.T) {
	input := `[{"city": "Zürich", "greeting": "こんにちは", "escaped": "caf\u00e9"}]`
	path := writeInput(t, "intl.json", input)

	if _, err := Split(path, Options{}); err != nil {
		t.Fatalf("Split: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(filepath.Dir(path), "intl_1.json"))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"Zürich", "こんにちは", "café"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing literal %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, `\u`) {
		t.Errorf("output contains unicode escapes:\n%s", text)
	}

	var items []map[string]string
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatal(err)
	}
	if items[0]["greeting"] != "こんにちは" || items[0]["escaped"] != "café" {
		t.Errorf("values changed on round trip: %v", items[0])
	}
}

func TestSplit_InputUntouched(t *testing.T) {
	input := `[1,2,3,4,5,6,7,8,9]`
	path := writeInput(t, "keep.json", input)

	if _, err := Split(path, Options{MaxBytes: 2}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != input {
		t.Errorf("input modified: %s", data)
	}
}

func TestSplit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "object", content: `{"items": [1, 2]}`, want: stream.ErrNotArray},
		{name: "empty file", content: ``, want: stream.ErrEmptyInput},
		{name: "trailing", content: `[1][2]`, want: stream.ErrTrailingData},
		{name: "malformed", content: `[1, 2,, 3]`},
		{name: "lone surrogate", content: `["\ud800x"]`, want: stream.ErrLoneSurrogate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeInput(t, "bad.json", tt.content)
			res, err := Split(path, Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if res.Files() != 0 {
				t.Errorf("files = %d, want 0", res.Files())
			}
		})
	}
}

func TestSplit_MissingInput(t *testing.T) {
	_, err := Split(filepath.Join(t.TempDir(), "absent.json"), Options{})
	if !errors.Is(err, discover.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSplit_PartialOutputKeptOnParseError(t *testing.T) {
	input := `["aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc", {broken}]`
	path := writeInput(t, "partial.json", input)

	res, err := Split(path, Options{MaxBytes: 12})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if res.Files() != 2 {
		t.Fatalf("files before failure = %d, want 2", res.Files())
	}
	for _, c := range res.Chunks {
		if _, statErr := os.Stat(c.Path); statErr != nil {
			t.Errorf("flushed chunk %s missing: %v", c.Path, statErr)
		}
	}
	third := filepath.Join(filepath.Dir(path), "partial_3.json")
	if _, statErr := os.Stat(third); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("unflushed chunk should not exist, stat err = %v", statErr)
	}
}

func TestSplit_UnwritableOutput(t *testing.T) {
	path := writeInput(t, "data.json", `[1, 2]`)
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Split(path, Options{OutputDir: filepath.Join(blocker, "out")})
	if err == nil || !strings.Contains(err.Error(), "write chunk 1") {
		t.Fatalf("err = %v, want write failure", err)
	}
}

func TestSplit_DryRun(t *testing.T) {
	path := writeInput(t, "plan.json", `[1, 2, 3]`)

	var progress bytes.Buffer
	res, err := Split(path, Options{MaxBytes: 2, DryRun: true, Progress: &progress})
	if err != nil {
		t.Fatal(err)
	}
	if res.Files() != 2 {
		t.Fatalf("files = %d, want 2", res.Files())
	}
	for _, c := range res.Chunks {
		if _, statErr := os.Stat(c.Path); !errors.Is(statErr, os.ErrNotExist) {
			t.Errorf("dry run wrote %s", c.Path)
		}
	}
	if !strings.Contains(progress.String(), "would create: ") {
		t.Errorf("progress should describe planned files:\n%s", progress.String())
	}
}

func TestSplit_JSONLIntoOutputDir(t *testing.T) {
	path := writeInput(t, "lines.json", `[{"a": 1}, {"b": "ß"}, 3]`)
	outDir := filepath.Join(t.TempDir(), "chunks")

	res, err := Split(path, Options{Format: output.FormatJSONL, OutputDir: outDir})
	if err != nil {
		t.Fatal(err)
	}
	if res.Files() != 1 {
		t.Fatalf("files = %d, want 1", res.Files())
	}
	want := filepath.Join(outDir, "lines_1.jsonl")
	if res.Chunks[0].Path != want {
		t.Errorf("path = %s, want %s", res.Chunks[0].Path, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{\"a\":1}\n{\"b\":\"ß\"}\n3\n" {
		t.Errorf("jsonl content = %q", data)
	}
}

func TestSplit_CompactIndent(t *testing.T) {
	path := writeInput(t, "tight.json", `[ {"a" : 1} , 2 ]`)
	zero := 0

	if _, err := Split(path, Options{Indent: &zero}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(path), "tight_1.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[{\"a\":1},2]\n" {
		t.Errorf("compact output = %q", data)
	}
}

func TestDefaultMaxSizeMatchesConfig(t *testing.T) {
	if DefaultMaxSizeMB != config.DefaultMaxSizeMB {
		t.Errorf("splitter default %d MB, config default %d MB", DefaultMaxSizeMB, config.DefaultMaxSizeMB)
	}
}

func TestOptions_Limit(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    int64
		wantErr bool
	}{
		{name: "default", opts: Options{}, want: 24 * 1024 * 1024},
		{name: "megabytes", opts: Options{MaxSizeMB: 2}, want: 2 * 1024 * 1024},
		{name: "fractional", opts: Options{MaxSizeMB: 0.5}, want: 512 * 1024},
		{name: "bytes win", opts: Options{MaxSizeMB: 2, MaxBytes: 100}, want: 100},
		{name: "negative", opts: Options{MaxSizeMB: -1}, wantErr: true},
		{name: "negative bytes", opts: Options{MaxBytes: -5}, wantErr: true},
		{name: "rounds to zero", opts: Options{MaxSizeMB: 1e-9}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.Limit()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSize) {
					t.Fatalf("err = %v, want ErrInvalidSize", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Limit() = %d, want %d", got, tt.want)
			}
		})
	}
}
