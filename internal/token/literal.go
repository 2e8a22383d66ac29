package token

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrIntRange reports an integer literal that does not fit in 32 bits.
var ErrIntRange = errors.New("integer literal out of range")

// MinIntMagnitude is the decimal literal that only fits in 32 bits when it
// follows a unary minus.
const MinIntMagnitude = "2147483648"

// IsMinIntMagnitude reports whether text is the decimal magnitude of
// math.MinInt32, leading zeros allowed.
func IsMinIntMagnitude(text string) bool {
	return strings.TrimLeft(text, "0") == MinIntMagnitude
}

// EndsOperand reports whether a token of kind k can end an operand, which
// makes a following '-' binary.
func EndsOperand(k Kind) bool {
	switch k {
	case Ident, IntLit, FloatLit, StringLit, RParen, RBracket, KwTrue, KwFalse, KwNil:
		return true
	}
	return false
}

// ParseIntLit parses the text of an IntLit token. Decimal literals must fit
// in int32; hex and binary literals are 32-bit patterns and may set the
// sign bit.
func ParseIntLit(text string) (int32, error) {
	base := 10
	digits := text
	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		base, digits = 16, text[2:]
	case strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B"):
		base, digits = 2, text[2:]
	}
	if digits == "" {
		return 0, strconv.ErrSyntax
	}
	if base == 10 {
		v, err := strconv.ParseInt(digits, 10, 32)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return 0, ErrIntRange
			}
			return 0, err
		}
		return int32(v), nil
	}
	v, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrIntRange
		}
		return 0, err
	}
	return int32(uint32(v)), nil // #nosec G115 -- bit pattern is intended
}

// ParseFloatLit parses the text of a FloatLit token into a 32-bit float.
func ParseFloatLit(text string) (float32, error) {
	v, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

// FormatFloat renders f the way float literals are written: shortest
// round-tripping form, always with a '.' or exponent.
func FormatFloat(f float32) string {
	switch {
	case math.IsInf(float64(f), 1):
		return "inf"
	case math.IsInf(float64(f), -1):
		return "-inf"
	case math.IsNaN(float64(f)):
		return "nan"
	}
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
