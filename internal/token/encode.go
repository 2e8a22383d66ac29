package token

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"

	"fortio.org/safecast"
)

// Element ids of the tokenized byte form. Keywords and punctuation without a
// dedicated id are written as elemKindBase+Kind.
const (
	elemEOL     byte = 0x00
	elemFn      byte = 0x01
	elemEnd     byte = 0x02
	elemReturn  byte = 0x03
	elemInt1    byte = 0x04
	elemInt2    byte = 0x05
	elemInt3    byte = 0x06
	elemInt4    byte = 0x07
	elemFloat   byte = 0x08
	elemIdent   byte = 0x09
	elemString  byte = 0x0A
	elemComment byte = 0x0B

	elemKindBase byte = 0x20
)

// MaxNameLen is the longest identifier the byte form can hold.
const MaxNameLen = math.MaxUint8

// ImageMagic prefixes a stored program image.
const ImageMagic = "LSC\x01"

var (
	// ErrNameTooLong is returned for identifiers longer than MaxNameLen bytes.
	ErrNameTooLong = errors.New("name too long")
	// ErrInsufficientSpace is returned when a Builder cannot fit a line.
	ErrInsufficientSpace = errors.New("insufficient space")
	// ErrBadImage is returned for data without the image header.
	ErrBadImage = errors.New("not a program image")
)

// SequenceError reports malformed byte data at Offset.
type SequenceError struct {
	Offset int
	Reason string
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("bad token sequence at byte %d: %s", e.Offset, e.Reason)
}

// EncodeInt appends the variable-length big-endian form of v: the smallest
// of 1..4 payload bytes whose sign extension yields v.
func EncodeInt(dst []byte, v int32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v)) // #nosec G115 -- two's complement bytes
	switch {
	case v >= -(1<<7) && v < 1<<7:
		return append(dst, elemInt1, b[3])
	case v >= -(1<<15) && v < 1<<15:
		return append(dst, elemInt2, b[2], b[3])
	case v >= -(1<<23) && v < 1<<23:
		return append(dst, elemInt3, b[1], b[2], b[3])
	default:
		return append(dst, elemInt4, b[0], b[1], b[2], b[3])
	}
}

func decodeInt(id byte, payload []byte) int32 {
	switch id {
	case elemInt1:
		return int32(int8(payload[0])) // #nosec G115 -- sign extension
	case elemInt2:
		return int32(int16(binary.BigEndian.Uint16(payload))) // #nosec G115 -- sign extension
	case elemInt3:
		u := uint32(payload[0])<<16 | uint32(payload[1])<<8 | uint32(payload[2])
		if u&0x0080_0000 != 0 {
			u |= 0xFF00_0000
		}
		return int32(u) // #nosec G115 -- sign extension
	default:
		return int32(binary.BigEndian.Uint32(payload)) // #nosec G115 -- sign extension
	}
}

// EncodeLine appends the byte form of one line's tokens, terminated by an
// end-of-line element. EOF tokens are skipped.
func EncodeLine(dst []byte, toks []Token) ([]byte, error) {
	for _, t := range toks {
		switch t.Kind {
		case EOF:
			continue
		case Invalid:
			return dst, fmt.Errorf("cannot encode invalid token %q", t.Text)
		case KwFn:
			dst = append(dst, elemFn)
		case KwEnd:
			dst = append(dst, elemEnd)
		case KwReturn:
			dst = append(dst, elemReturn)
		case IntLit:
			v, err := ParseIntLit(t.Text)
			if err != nil {
				return dst, fmt.Errorf("encode %q: %w", t.Text, err)
			}
			dst = EncodeInt(dst, v)
		case FloatLit:
			f, err := ParseFloatLit(t.Text)
			if err != nil {
				return dst, fmt.Errorf("encode %q: %w", t.Text, err)
			}
			dst = append(dst, elemFloat)
			dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(f))
		case Ident:
			if len(t.Text) > MaxNameLen {
				return dst, fmt.Errorf("%w: %q is %d bytes", ErrNameTooLong, t.Text[:16]+"...", len(t.Text))
			}
			dst = append(dst, elemIdent, byte(len(t.Text)))
			dst = append(dst, t.Text...)
		case StringLit, Comment:
			n, err := safecast.Conv[uint16](len(t.Text))
			if err != nil {
				return dst, fmt.Errorf("encode %s: %w", t.Kind, err)
			}
			id := elemString
			if t.Kind == Comment {
				id = elemComment
			}
			dst = append(dst, id)
			dst = binary.BigEndian.AppendUint16(dst, n)
			dst = append(dst, t.Text...)
		default:
			dst = append(dst, elemKindBase+byte(t.Kind))
		}
	}
	return append(dst, elemEOL), nil
}

// DecodeLine decodes one line starting at data[off]. It returns the tokens
// and the offset just past the end-of-line element. Token spans are
// assigned as if tokens were separated by single spaces.
func DecodeLine(data []byte, off int) ([]Token, int, error) {
	var toks []Token
	var pos uint32
	push := func(k Kind, text string) {
		n, err := safecast.Conv[uint32](len(text))
		if err != nil {
			panic(fmt.Errorf("token length overflow: %w", err))
		}
		if len(toks) > 0 {
			pos++
		}
		toks = append(toks, Token{Kind: k, Text: text})
		toks[len(toks)-1].Span.Start = pos
		pos += n
		toks[len(toks)-1].Span.End = pos
	}
	need := func(at, n int) error {
		if at+n > len(data) {
			return &SequenceError{Offset: at, Reason: "truncated element"}
		}
		return nil
	}
	for {
		if off >= len(data) {
			return nil, off, &SequenceError{Offset: off, Reason: "missing end of line"}
		}
		id := data[off]
		start := off
		off++
		switch {
		case id == elemEOL:
			return toks, off, nil
		case id == elemFn:
			push(KwFn, KwFn.Spelling())
		case id == elemEnd:
			push(KwEnd, KwEnd.Spelling())
		case id == elemReturn:
			push(KwReturn, KwReturn.Spelling())
		case id >= elemInt1 && id <= elemInt4:
			n := int(id-elemInt1) + 1
			if err := need(off, n); err != nil {
				return nil, off, err
			}
			v := decodeInt(id, data[off:off+n])
			off += n
			push(IntLit, formatIntLit(v))
		case id == elemFloat:
			if err := need(off, 4); err != nil {
				return nil, off, err
			}
			f := math.Float32frombits(binary.BigEndian.Uint32(data[off:]))
			off += 4
			push(FloatLit, FormatFloat(f))
		case id == elemIdent:
			if err := need(off, 1); err != nil {
				return nil, off, err
			}
			n := int(data[off])
			off++
			if err := need(off, n); err != nil {
				return nil, off, err
			}
			push(Ident, string(data[off:off+n]))
			off += n
		case id == elemString || id == elemComment:
			if err := need(off, 2); err != nil {
				return nil, off, err
			}
			n := int(binary.BigEndian.Uint16(data[off:]))
			off += 2
			if err := need(off, n); err != nil {
				return nil, off, err
			}
			k := StringLit
			if id == elemComment {
				k = Comment
			}
			push(k, string(data[off:off+n]))
			off += n
		case id >= elemKindBase && Kind(id-elemKindBase).Valid() && Kind(id-elemKindBase).Spelling() != "":
			k := Kind(id - elemKindBase)
			push(k, k.Spelling())
		default:
			return nil, start, &SequenceError{Offset: start, Reason: fmt.Sprintf("unknown element 0x%02x", id)}
		}
	}
}

// negative values only arise from hex patterns, so keep them as hex
func formatIntLit(v int32) string {
	if v < 0 {
		return fmt.Sprintf("0x%X", uint32(v)) // #nosec G115 -- bit pattern
	}
	return strconv.FormatInt(int64(v), 10)
}

// EncodeProgram encodes every line in order.
func EncodeProgram(lines [][]Token) ([]byte, error) {
	var out []byte
	for i, toks := range lines {
		var err error
		out, err = EncodeLine(out, toks)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return out, nil
}

// DecodeProgram decodes a sequence of encoded lines.
func DecodeProgram(data []byte) ([][]Token, error) {
	var lines [][]Token
	off := 0
	for off < len(data) {
		toks, next, err := DecodeLine(data, off)
		if err != nil {
			return nil, err
		}
		lines = append(lines, toks)
		off = next
	}
	return lines, nil
}

// EncodeImage wraps EncodeProgram output with ImageMagic.
func EncodeImage(lines [][]Token) ([]byte, error) {
	body, err := EncodeProgram(lines)
	if err != nil {
		return nil, err
	}
	return append([]byte(ImageMagic), body...), nil
}

// DecodeImage checks the header and decodes the program lines.
func DecodeImage(data []byte) ([][]Token, error) {
	if len(data) < len(ImageMagic) || string(data[:len(ImageMagic)]) != ImageMagic {
		return nil, ErrBadImage
	}
	return DecodeProgram(data[len(ImageMagic):])
}

// Builder writes encoded lines into a fixed-capacity buffer.
type Builder struct {
	buf  []byte
	used int
}

// NewBuilder returns a Builder writing into buf; len(buf) is the capacity.
func NewBuilder(buf []byte) *Builder {
	return &Builder{buf: buf}
}

// Used returns the number of bytes written.
func (b *Builder) Used() int { return b.used }

// Free returns the remaining capacity.
func (b *Builder) Free() int { return len(b.buf) - b.used }

// Bytes returns the written prefix of the buffer.
func (b *Builder) Bytes() []byte { return b.buf[:b.used] }

// AppendLine encodes toks and copies them into the buffer. Nothing is
// written when the line does not fit.
func (b *Builder) AppendLine(toks []Token) error {
	enc, err := EncodeLine(nil, toks)
	if err != nil {
		return err
	}
	if len(enc) > b.Free() {
		return fmt.Errorf("%w: need %d bytes, %d free", ErrInsufficientSpace, len(enc), b.Free())
	}
	b.used += copy(b.buf[b.used:], enc)
	return nil
}
