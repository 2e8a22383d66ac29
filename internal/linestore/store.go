// Package linestore holds an editable program as an ordered list of
// tokenized lines.
package linestore

import (
	"errors"
	"fmt"

	"lisle/internal/diag"
	"lisle/internal/format"
	"lisle/internal/lexer"
	"lisle/internal/source"
	"lisle/internal/token"
)

// Line is one program line: its text and the tokens it was split into.
type Line struct {
	Text   string
	Tokens []token.Token
	size   int // encoded size in bytes, valid when the store has a capacity
}

// Store owns the lines of a program. Nesting is not validated on edit.
type Store struct {
	lines    []Line
	opt      format.Options
	capacity int
	used     int
}

// New returns an empty store without a size limit.
func New(opt format.Options) *Store {
	return &Store{opt: opt}
}

// NewWithCapacity returns a store whose encoded program must fit in
// capacity bytes.
func NewWithCapacity(opt format.Options, capacity int) *Store {
	return &Store{opt: opt, capacity: capacity}
}

// FromLines builds a store from source lines. It fails on the first line
// that does not tokenize and reports that line's number.
func FromLines(opt format.Options, lines []string) (*Store, error) {
	s := New(opt)
	for _, text := range lines {
		if err := s.Append(text); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// FromTokens builds a store from already tokenized lines, as produced by
// token.DecodeImage. Line text is the canonical rendering.
func FromTokens(opt format.Options, lines [][]token.Token) *Store {
	s := New(opt)
	s.lines = make([]Line, len(lines))
	for i, toks := range lines {
		s.lines[i] = Line{Text: format.Line(toks), Tokens: toks}
	}
	return s
}

// Len returns the number of lines.
func (s *Store) Len() int { return len(s.lines) }

// Used returns the encoded program size when the store has a capacity.
func (s *Store) Used() int { return s.used }

// Capacity returns the byte limit, zero when unlimited.
func (s *Store) Capacity() int { return s.capacity }

// Options returns the render options.
func (s *Store) Options() format.Options { return s.opt }

// Line returns the line at pos (0-based).
func (s *Store) Line(pos int) (Line, error) {
	if pos < 0 || pos >= len(s.lines) {
		return Line{}, outOfRange(pos, len(s.lines)-1)
	}
	return s.lines[pos], nil
}

// Tokens returns the token slices of every line in order.
func (s *Store) Tokens() [][]token.Token {
	out := make([][]token.Token, len(s.lines))
	for i := range s.lines {
		out[i] = s.lines[i].Tokens
	}
	return out
}

// Texts returns the text of every line in order.
func (s *Store) Texts() []string {
	out := make([]string, len(s.lines))
	for i := range s.lines {
		out[i] = s.lines[i].Text
	}
	return out
}

// Insert tokenizes text and inserts it before pos; pos == Len() appends.
// On error the store is unchanged.
func (s *Store) Insert(pos int, text string) error {
	if pos < 0 || pos > len(s.lines) {
		return outOfRange(pos, len(s.lines))
	}
	ln, err := s.makeLine(pos, text)
	if err != nil {
		return err
	}
	if err := s.reserve(ln.size); err != nil {
		return err.AtLine(lineNo(pos))
	}
	s.lines = append(s.lines, Line{})
	copy(s.lines[pos+1:], s.lines[pos:])
	s.lines[pos] = ln
	return nil
}

// Append adds a line at the end.
func (s *Store) Append(text string) error {
	return s.Insert(len(s.lines), text)
}

// Delete removes the line at pos.
func (s *Store) Delete(pos int) error {
	return s.DeleteRange(pos, pos+1)
}

// DeleteRange removes lines [start, end).
func (s *Store) DeleteRange(start, end int) error {
	if start < 0 || start >= len(s.lines) {
		return outOfRange(start, len(s.lines)-1)
	}
	if end < start || end > len(s.lines) {
		return outOfRange(end, len(s.lines))
	}
	for i := start; i < end; i++ {
		s.used -= s.lines[i].size
	}
	s.lines = append(s.lines[:start], s.lines[end:]...)
	return nil
}

// Replace re-tokenizes the line at pos with new text.
func (s *Store) Replace(pos int, text string) error {
	if pos < 0 || pos >= len(s.lines) {
		return outOfRange(pos, len(s.lines)-1)
	}
	ln, err := s.makeLine(pos, text)
	if err != nil {
		return err
	}
	if err := s.reserve(ln.size - s.lines[pos].size); err != nil {
		return err.AtLine(lineNo(pos))
	}
	s.lines[pos] = ln
	return nil
}

// Render returns the canonical program text indented by nesting depth.
func (s *Store) Render() string {
	return format.Render(s.Tokens(), s.opt)
}

// Encode returns the tokenized byte form of the whole program.
func (s *Store) Encode() ([]byte, error) {
	return token.EncodeProgram(s.Tokens())
}

func (s *Store) makeLine(pos int, text string) (Line, error) {
	text = source.NormalizeLine(text)
	toks, err := lexer.TokenizeWith(text, lexer.Options{Line: lineNo(pos)})
	if err != nil {
		return Line{}, err
	}
	ln := Line{Text: text, Tokens: toks}
	if s.capacity > 0 {
		enc, err := token.EncodeLine(nil, toks)
		if err != nil {
			code := diag.IOBadImage
			if errors.Is(err, token.ErrNameTooLong) {
				code = diag.IONameTooLong
			}
			return Line{}, &diag.Error{Code: code, Msg: err.Error(), Line: lineNo(pos), Cause: err}
		}
		ln.size = len(enc)
	}
	return ln, nil
}

func (s *Store) reserve(delta int) *diag.Error {
	if s.capacity <= 0 {
		return nil
	}
	if s.used+delta > s.capacity {
		return &diag.Error{
			Code:  diag.IOInsufficientSpace,
			Msg:   fmt.Sprintf("program needs %d bytes, capacity is %d", s.used+delta, s.capacity),
			Cause: token.ErrInsufficientSpace,
		}
	}
	s.used += delta
	return nil
}

func lineNo(pos int) uint32 {
	if pos < 0 {
		return 0
	}
	return uint32(pos) + 1 // #nosec G115 -- pos is bounded by len(lines)
}

func outOfRange(pos, last int) error {
	return &diag.Error{
		Code: diag.IOLineOutOfRange,
		Msg:  fmt.Sprintf("line position %d out of range [0, %d]", pos, max(last, 0)),
	}
}
