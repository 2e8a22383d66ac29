package lexer_test

import (
	"testing"

	"lisle/internal/diag"
	"lisle/internal/lexer"
	"lisle/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeKinds(t *testing.T) {
	tests := []struct {
		line string
		want []token.Kind
	}{
		{"", nil},
		{"   ", nil},
		{"var x = 10", []token.Kind{token.KwVar, token.Ident, token.Assign, token.IntLit}},
		{"for i = 1 to 5 step 2", []token.Kind{
			token.KwFor, token.Ident, token.Assign, token.IntLit, token.KwTo, token.IntLit, token.KwStep, token.IntLit,
		}},
		{"fn f(a, ...)", []token.Kind{
			token.KwFn, token.Ident, token.LParen, token.Ident, token.Comma, token.DotDotDot, token.RParen,
		}},
		{"if a <= b and not c != d", []token.Kind{
			token.KwIf, token.Ident, token.LtEq, token.Ident, token.KwAnd, token.KwNot, token.Ident, token.BangEq, token.Ident,
		}},
		{"v[1].x", []token.Kind{token.Ident, token.LBracket, token.IntLit, token.RBracket, token.Dot, token.Ident}},
		{`print("a # b") # tail`, []token.Kind{token.Ident, token.LParen, token.StringLit, token.RParen, token.Comment}},
		{"x = 1.5e-3 * 0xFF % 0b11", []token.Kind{
			token.Ident, token.Assign, token.FloatLit, token.Star, token.IntLit, token.Percent, token.IntLit,
		}},
		{"return nil", []token.Kind{token.KwReturn, token.KwNil}},
		{"# only a comment", []token.Kind{token.Comment}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			toks, err := lexer.Tokenize(tt.line)
			if err != nil {
				t.Fatalf("Tokenize(%q): %v", tt.line, err)
			}
			got := kinds(toks)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("token %d: got %v, want %v (all: %v)", i, got[i], tt.want[i], got)
				}
			}
		})
	}
}

func TestTokenTextAndSpan(t *testing.T) {
	line := `let name = "hi\n"`
	toks, err := lexer.Tokenize(line)
	if err != nil {
		t.Fatal(err)
	}
	for _, tok := range toks {
		if line[tok.Span.Start:tok.Span.End] != tok.Text {
			t.Fatalf("span %v does not match text %q", tok.Span, tok.Text)
		}
	}
	s, err := lexer.Unquote(toks[3].Text)
	if err != nil || s != "hi\n" {
		t.Fatalf("Unquote = %q, %v", s, err)
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		line string
		code diag.Code
		col  uint32
	}{
		{"var x = $", diag.LexUnknownChar, 9},
		{`print("open`, diag.LexUnterminatedString, 7},
		{`print("bad \q")`, diag.LexBadEscape, 12},
		{"var x = 2147483648", diag.LexIntOverflow, 9},
		{"var x = 1 - 2147483648", diag.LexIntOverflow, 13},
		{"var x = -0x2147483648", diag.LexIntOverflow, 10},
		{"var x = 12abc", diag.LexBadNumber, 9},
		{"var x = 0x", diag.LexBadNumber, 9},
		{"var x = 1e", diag.LexBadNumber, 9},
		{"a ! b", diag.LexUnknownChar, 3},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := lexer.Tokenize(tt.line)
			if err == nil {
				t.Fatalf("expected error for %q", tt.line)
			}
			de, ok := err.(*diag.Error)
			if !ok {
				t.Fatalf("expected *diag.Error, got %T", err)
			}
			if de.Code != tt.code {
				t.Fatalf("code = %v, want %v", de.Code.ID(), tt.code.ID())
			}
			if de.Kind() != diag.KindLex {
				t.Fatalf("kind = %v", de.Kind())
			}
			if de.Span.Col() != tt.col {
				t.Fatalf("col = %d, want %d", de.Span.Col(), tt.col)
			}
		})
	}
}

func TestTokenizeMinIntMagnitude(t *testing.T) {
	for _, line := range []string{
		"var x = -2147483648",
		"f(-2147483648, - 2147483648)",
		"v[-2147483648]",
	} {
		toks, err := lexer.Tokenize(line)
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", line, err)
		}
		found := false
		for _, tok := range toks {
			if tok.Kind == token.IntLit && tok.Text == token.MinIntMagnitude {
				found = true
			}
		}
		if !found {
			t.Errorf("Tokenize(%q) = %v, no magnitude literal", line, kinds(toks))
		}
	}
}

func TestTokenizeUnicodeIdent(t *testing.T) {
	toks, err := lexer.Tokenize("var größe = 1")
	if err != nil {
		t.Fatal(err)
	}
	if toks[1].Kind != token.Ident || toks[1].Text != "größe" {
		t.Fatalf("unexpected ident %v %q", toks[1].Kind, toks[1].Text)
	}
}

func TestReporterReceivesErrors(t *testing.T) {
	bag := diag.NewBag(4)
	_, err := lexer.TokenizeWith("x = @", lexer.Options{Reporter: diag.BagReporter{Bag: bag}, Line: 12})
	if err == nil {
		t.Fatal("expected error")
	}
	if bag.Len() != 1 || bag.Items()[0].Line != 12 {
		t.Fatalf("unexpected bag contents: %+v", bag.Items())
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	for _, s := range []string{"", "plain", "tab\tq\"uote\\", "nl\n"} {
		got, err := lexer.Unquote(lexer.Quote(s))
		if err != nil || got != s {
			t.Fatalf("round trip %q -> %q (%v)", s, got, err)
		}
	}
}
