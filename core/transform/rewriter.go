package transform

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

var ErrEditConflict = errors.New("overlapping edits")

type edit struct {
	start, end uint
	text       string
	seq        int
}

func (e edit) insertion() bool {
	return e.start == e.end
}

// Rewriter collects text edits against the original source and applies them
// in one pass. Untouched bytes are copied through unchanged.
type Rewriter struct {
	src    []byte
	edits  []edit
	prefix []string
	suffix []string
}

func NewRewriter(src []byte) *Rewriter {
	return &Rewriter{src: src}
}

func (r *Rewriter) ReplaceRange(start, end uint, text string) {
	r.edits = append(r.edits, edit{start: start, end: end, text: text, seq: len(r.edits)})
}

func (r *Rewriter) Replace(n sitter.Node, text string) {
	r.ReplaceRange(n.StartByte(), n.EndByte(), text)
}

// Remove deletes n together with the line break that follows it.
func (r *Rewriter) Remove(n sitter.Node) {
	end := n.EndByte()
	switch {
	case bytes.HasPrefix(r.src[end:], []byte("\r\n")):
		end += 2
	case bytes.HasPrefix(r.src[end:], []byte("\n")):
		end++
	}
	r.ReplaceRange(n.StartByte(), end, "")
}

func (r *Rewriter) InsertAt(pos uint, text string) {
	r.ReplaceRange(pos, pos, text)
}

// Prepend adds text before the whole file. Calls keep their order.
func (r *Rewriter) Prepend(text string) {
	r.prefix = append(r.prefix, text)
}

// Append adds text after the whole file. Calls keep their order.
func (r *Rewriter) Append(text string) {
	r.suffix = append(r.suffix, text)
}

func (r *Rewriter) Len() int {
	return len(r.edits) + len(r.prefix) + len(r.suffix)
}

// Apply produces the rewritten source. Insertions at a position land before a
// replacement starting there; edits that overlap fail with ErrEditConflict.
func (r *Rewriter) Apply() ([]byte, error) {
	edits := make([]edit, len(r.edits))
	copy(edits, r.edits)

	sort.SliceStable(edits, func(i, j int) bool {
		a, b := edits[i], edits[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if a.insertion() != b.insertion() {
			return a.insertion()
		}
		return a.seq < b.seq
	})

	var out strings.Builder
	out.Grow(len(r.src))

	for _, p := range r.prefix {
		out.WriteString(p)
	}

	cursor := uint(0)
	for _, e := range edits {
		if e.end < e.start || e.end > uint(len(r.src)) {
			return nil, fmt.Errorf("edit [%d,%d) out of bounds", e.start, e.end)
		}
		if e.start < cursor {
			return nil, fmt.Errorf("%w: [%d,%d) overlaps text rewritten up to %d", ErrEditConflict, e.start, e.end, cursor)
		}
		out.Write(r.src[cursor:e.start])
		out.WriteString(e.text)
		cursor = e.end
	}
	out.Write(r.src[cursor:])

	if len(r.suffix) > 0 && out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
		out.WriteString("\n")
	}
	for _, s := range r.suffix {
		out.WriteString(s)
	}

	return []byte(out.String()), nil
}
