// Package token defines lexical token kinds for Lisle program lines and the
// compact tokenized byte form used to store them.
// Invariants:
//   - Token.Text is a slice of the original line (no copies).
//   - Token.Span matches Text exactly (Start..End, byte offsets in the line).
//   - A '#' comment is a single Comment token running to end of line.
//   - Built-in function names (print, len, vec, ...) are identifiers.
//     They are resolved by the engine, not the lexer.
package token
