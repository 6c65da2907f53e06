// Package splitter breaks a large top-level JSON array into numbered chunk
// files that each stay under a byte budget.
//
// Items are streamed from the input one at a time and packed greedily: the
// current chunk is flushed before an item that would push it past the limit
// is added. A single item larger than the limit still gets a chunk of its own.
// Sizes are measured on each item's compact encoding, so files on disk run a
// little larger once separators and indentation are added.
package splitter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/natedelduca/json-split/internal/chunk"
	"github.com/natedelduca/json-split/internal/discover"
	"github.com/natedelduca/json-split/internal/logger"
	"github.com/natedelduca/json-split/internal/output"
	"github.com/natedelduca/json-split/internal/stream"
)

// DefaultMaxSizeMB is the chunk cap used when Options leaves it unset.
const DefaultMaxSizeMB = 24

// ErrInvalidSize is returned for a non-positive size limit.
var ErrInvalidSize = errors.New("max size must be positive")

// Options controls a split run. The zero value splits at DefaultMaxSizeMB
// into indented JSON files next to the input and prints nothing.
type Options struct {
	MaxSizeMB float64

	// MaxBytes, when positive, takes precedence over MaxSizeMB.
	MaxBytes int64

	Format    output.Format
	Indent    *int
	OutputDir string
	DryRun    bool

	// Progress receives one line per chunk and a final summary.
	Progress io.Writer
}

// Result summarises a completed run.
type Result struct {
	Input  discover.Input
	Limit  int64
	Chunks []chunk.Chunk
	Items  int
}

// Files returns the number of chunks created.
func (r Result) Files() int { return len(r.Chunks) }

// Limit resolves the byte threshold for opts.
func (o Options) Limit() (int64, error) {
	if o.MaxBytes > 0 {
		return o.MaxBytes, nil
	}
	mb := o.MaxSizeMB
	if mb == 0 {
		mb = DefaultMaxSizeMB
	}
	if mb < 0 || o.MaxBytes < 0 {
		return 0, fmt.Errorf("%w: %v MB", ErrInvalidSize, mb)
	}
	limit := int64(mb * 1024 * 1024)
	if limit <= 0 {
		return 0, fmt.Errorf("%w: %v MB rounds to zero bytes", ErrInvalidSize, mb)
	}
	return limit, nil
}

// Split streams the array in inputPath into chunk files. Chunks written before
// a failure are left on disk; the input file is never modified.
func Split(inputPath string, opts Options) (Result, error) {
	in, err := discover.Discover(inputPath)
	if err != nil {
		return Result{}, err
	}

	f, err := os.Open(in.Path)
	if err != nil {
		return Result{Input: in}, err
	}
	defer f.Close()

	return SplitReader(f, in, opts)
}

// SplitReader is Split for an already opened input. in names the chunks.
func SplitReader(r io.Reader, in discover.Input, opts Options) (Result, error) {
	limit, err := opts.Limit()
	if err != nil {
		return Result{Input: in}, err
	}

	s := &splitter{
		in:     in,
		opts:   opts,
		format: opts.Format,
		indent: output.DefaultIndent,
		buf:    chunk.NewBuffer(limit),
		log:    logger.Named("splitter"),
		res:    Result{Input: in, Limit: limit},
	}
	if s.format == "" {
		s.format = output.FormatJSON
	}
	if opts.Indent != nil {
		s.indent = *opts.Indent
	}
	if s.opts.Progress == nil {
		s.opts.Progress = io.Discard
	}

	s.log.Debug().
		Str("input", in.Path).
		Int64("limit", limit).
		Str("format", string(s.format)).
		Bool("dry_run", opts.DryRun).
		Msg("split started")

	if err := s.run(stream.NewArrayReader(r)); err != nil {
		return s.res, err
	}

	fmt.Fprintf(s.opts.Progress, "\nsplit complete: %d files created\n", s.res.Files())
	s.log.Debug().Int("files", s.res.Files()).Int("items", s.res.Items).Msg("split finished")
	return s.res, nil
}

type splitter struct {
	in     discover.Input
	opts   Options
	format output.Format
	indent int
	buf    *chunk.Buffer
	log    *logger.Logger
	res    Result
}

func (s *splitter) run(items *stream.ArrayReader) error {
	for {
		item, err := items.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if !s.buf.Fits(len(item.Raw)) {
			if err := s.flush(); err != nil {
				return err
			}
		}
		if int64(len(item.Raw)) > s.buf.Limit() {
			s.log.Warn().
				Int("item", item.Index).
				Int("size", len(item.Raw)).
				Int64("limit", s.buf.Limit()).
				Msg("item exceeds size limit; writing it to its own chunk")
		}
		s.buf.Add(item.Raw)
		s.res.Items = items.Count()
	}

	if s.buf.Len() > 0 {
		return s.flush()
	}
	return nil
}

func (s *splitter) flush() error {
	c := chunk.Chunk{
		Seq:   len(s.res.Chunks) + 1,
		Items: s.buf.Len(),
		Size:  s.buf.Size(),
	}
	c.Path = s.in.ChunkPath(s.opts.OutputDir, c.Seq, s.format.Ext())

	verb := "created"
	if s.opts.DryRun {
		verb = "would create"
	} else if err := s.format.Write(c.Path, s.buf.Items(), s.indent); err != nil {
		return fmt.Errorf("write chunk %d: %w", c.Seq, err)
	}

	fmt.Fprintf(s.opts.Progress, "%s: %s (%d items, %s)\n", verb, c.Path, c.Items, humanize.IBytes(uint64(c.Size)))
	s.log.Debug().Int("seq", c.Seq).Int("items", c.Items).Int64("size", c.Size).Str("path", c.Path).Msg("chunk flushed")

	s.res.Chunks = append(s.res.Chunks, c)
	s.buf.Reset()
	return nil
}
