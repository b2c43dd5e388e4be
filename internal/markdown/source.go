package markdown

import (
	"bytes"
	"sort"

	"github.com/agentic-research/mdsql/internal/mdast"
)

// source is the document text plus the line table used to turn byte offsets
// into points.
type source struct {
	src    []byte
	starts []int
}

func newSource(src []byte) *source {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &source{src: src, starts: starts}
}

func (s *source) point(off int) mdast.Point {
	line := sort.Search(len(s.starts), func(i int) bool { return s.starts[i] > off }) - 1
	if line < 0 {
		line = 0
	}
	return mdast.Point{Line: line + 1, Column: off - s.starts[line] + 1, Offset: off}
}

// position builds the range [start, end). It returns nil for an invalid range.
func (s *source) position(start, end int) *mdast.Position {
	if start < 0 || end < start || end > len(s.src) {
		return nil
	}
	return &mdast.Position{Start: s.point(start), End: s.point(end)}
}

// lineStart is the offset of the first byte of the line holding off.
func (s *source) lineStart(off int) int {
	for off > 0 && s.src[off-1] != '\n' {
		off--
	}
	return off
}

// lineEnd is the offset of the newline ending the line that holds off, or
// len(src) on the last line.
func lineEnd(src []byte, off int) int {
	if off >= len(src) {
		return len(src)
	}
	if i := bytes.IndexByte(src[off:], '\n'); i >= 0 {
		return off + i
	}
	return len(src)
}

func (s *source) lineEnd(off int) int { return lineEnd(s.src, off) }

// trimmedLineEnd is lineEnd with trailing blanks removed, never before off.
func (s *source) trimmedLineEnd(off int) int {
	end := s.lineEnd(off)
	for end > off && isBlankByte(s.src[end-1]) {
		end--
	}
	return end
}

// nextLine is the start of the line after the one holding off, or -1.
func (s *source) nextLine(off int) int {
	end := s.lineEnd(off)
	if end >= len(s.src) {
		return -1
	}
	return end + 1
}

// backOver moves off left past any bytes in set.
func (s *source) backOver(off int, set string) int {
	for off > 0 && bytes.IndexByte([]byte(set), s.src[off-1]) >= 0 {
		off--
	}
	return off
}

// forwardOver moves off right past any bytes in set.
func (s *source) forwardOver(off int, set string) int {
	for off < len(s.src) && bytes.IndexByte([]byte(set), s.src[off]) >= 0 {
		off++
	}
	return off
}

// trimEnd moves end left past trailing blanks and line breaks, never before
// start.
func (s *source) trimEnd(start, end int) int {
	for end > start && isBlankByte(s.src[end-1]) {
		end--
	}
	return end
}

// index finds needle at or after from, returning -1 when absent.
func (s *source) index(from int, needle []byte) int {
	if from < 0 {
		from = 0
	}
	if from > len(s.src) || len(needle) == 0 {
		return -1
	}
	i := bytes.Index(s.src[from:], needle)
	if i < 0 {
		return -1
	}
	return from + i
}

// closeBracket finds the unescaped close for the open bracket at off, honoring
// nesting. It returns -1 when there is none.
func (s *source) closeBracket(off int, open, close byte) int {
	depth := 0
	for i := off; i < len(s.src); i++ {
		switch c := s.src[i]; {
		case c == '\\':
			i++
		case c == open && open != close:
			depth++
		case c == close:
			if open == close && i == off {
				continue
			}
			depth--
			if depth <= 0 {
				return i
			}
		}
	}
	return -1
}

func isBlankByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
