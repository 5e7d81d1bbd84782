package writeback

import (
	"errors"
	"fmt"
	"sort"
)

// ErrOverlap is returned when two queued edits touch the same bytes.
var ErrOverlap = errors.New("overlapping edits")

// edit replaces src[start:end] with text. start == end is an insertion.
type edit struct {
	start, end int
	text       string
	seq        int
}

// Buffer is a queue of splices over an original text. Offsets always refer
// to the original bytes; edits are applied together by Bytes.
type Buffer struct {
	src   []byte
	edits []edit
}

func NewBuffer(src []byte) *Buffer {
	return &Buffer{src: src}
}

// Replace queues replacing src[start:end] with text.
func (b *Buffer) Replace(start, end uint32, text string) {
	b.edits = append(b.edits, edit{start: int(start), end: int(end), text: text, seq: len(b.edits)})
}

// Insert queues inserting text at pos. Insertions at the same position keep
// their queue order.
func (b *Buffer) Insert(pos uint32, text string) {
	b.Replace(pos, pos, text)
}

// Bytes applies every queued edit and returns the new text. The original
// slice is never modified.
func (b *Buffer) Bytes() ([]byte, error) {
	if len(b.edits) == 0 {
		return b.src, nil
	}

	edits := make([]edit, len(b.edits))
	copy(edits, b.edits)
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].start != edits[j].start {
			return edits[i].start < edits[j].start
		}
		if edits[i].end != edits[j].end {
			return edits[i].end < edits[j].end
		}
		return edits[i].seq < edits[j].seq
	})

	size, last := len(b.src), 0
	for _, e := range edits {
		if e.start > e.end || e.end > len(b.src) {
			return nil, fmt.Errorf("invalid byte range [%d:%d] for text of length %d", e.start, e.end, len(b.src))
		}
		if e.start < last {
			return nil, fmt.Errorf("%w: [%d:%d] starts before %d", ErrOverlap, e.start, e.end, last)
		}
		size += len(e.text) - (e.end - e.start)
		last = e.end
	}

	// result = src with each [start:end) swapped for its text
	result := make([]byte, 0, size)
	last = 0
	for _, e := range edits {
		result = append(result, b.src[last:e.start]...)
		result = append(result, e.text...)
		last = e.end
	}
	result = append(result, b.src[last:]...)
	return result, nil
}
