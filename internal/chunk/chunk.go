package chunk

// Chunk describes one flushed output file. Size is the summed compact size of
// its items, not the size on disk.
type Chunk struct {
	Seq   int
	Path  string
	Items int
	Size  int64
}

// Buffer accumulates serialized items until the next one would push the
// running size past the limit.
type Buffer struct {
	limit int64
	items [][]byte
	size  int64
}

// NewBuffer returns an empty buffer bounded by limit bytes.
func NewBuffer(limit int64) *Buffer {
	return &Buffer{limit: limit}
}

// Fits reports whether an item of n bytes can join the buffer. An empty
// buffer always accepts, so an oversized item ends up alone in its chunk.
func (b *Buffer) Fits(n int) bool {
	if len(b.items) == 0 {
		return true
	}
	return b.size+int64(n) <= b.limit
}

// Add appends item and grows the running size by its length.
func (b *Buffer) Add(item []byte) {
	b.items = append(b.items, item)
	b.size += int64(len(item))
}

func (b *Buffer) Len() int { return len(b.items) }

func (b *Buffer) Size() int64 { return b.size }

func (b *Buffer) Limit() int64 { return b.limit }

func (b *Buffer) Items() [][]byte { return b.items }

// Reset empties the buffer. Previously returned Items slices stay valid.
func (b *Buffer) Reset() {
	b.items = nil
	b.size = 0
}
