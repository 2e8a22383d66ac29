package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"lisle/internal/token"
)

// TokenOutput is one token in `lisle tokenize --format json`.
type TokenOutput struct {
	Line  int    `json:"line"`
	Kind  string `json:"kind"`
	Text  string `json:"text,omitempty"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// FormatTokensPretty prints one token per row:
//
//	  1:1    KwVar      "var"
func FormatTokensPretty(w io.Writer, lines [][]token.Token) error {
	for i, toks := range lines {
		for _, tok := range toks {
			if _, err := fmt.Fprintf(w, "%4d:%-4d %-12s %q\n", i+1, tok.Span.Col(), tok.Kind, tok.Text); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatTokensJSON writes every token as an indented JSON array.
func FormatTokensJSON(w io.Writer, lines [][]token.Token) error {
	out := make([]TokenOutput, 0, len(lines)*4)
	for i, toks := range lines {
		for _, tok := range toks {
			out = append(out, TokenOutput{
				Line:  i + 1,
				Kind:  tok.Kind.String(),
				Text:  tok.Text,
				Start: tok.Span.Start,
				End:   tok.Span.End,
			})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
