// Package testkit holds assertions shared by tests of several packages.
package testkit

import (
	"fmt"
	"strings"

	"lisle/internal/format"
	"lisle/internal/lexer"
	"lisle/internal/linestore"
	"lisle/internal/parser"
	"lisle/internal/token"
	"lisle/internal/vm"
)

// CheckRenderInvariants verifies that a store renders consistently:
// 1) Render yields exactly one line per stored line
// 2) every rendered line re-tokenizes to the stored tokens
// 3) rendering the rendered text again changes nothing
func CheckRenderInvariants(s *linestore.Store) error {
	if s == nil {
		return fmt.Errorf("nil store")
	}
	rendered := s.Render()
	if s.Len() == 0 {
		if rendered != "" {
			return fmt.Errorf("empty store rendered %q", rendered)
		}
		return nil
	}
	out := strings.Split(strings.TrimSuffix(rendered, "\n"), "\n")
	if len(out) != s.Len() {
		return fmt.Errorf("render has %d lines, store has %d", len(out), s.Len())
	}
	for i, text := range out {
		toks, err := lexer.Tokenize(text)
		if err != nil {
			return fmt.Errorf("rendered line %d does not tokenize: %w", i+1, err)
		}
		ln, err := s.Line(i)
		if err != nil {
			return err
		}
		if err := sameTokens(toks, ln.Tokens); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	again, err := linestore.FromLines(s.Options(), out)
	if err != nil {
		return fmt.Errorf("re-reading rendered text: %w", err)
	}
	if again.Render() != rendered {
		return fmt.Errorf("render is not idempotent:\n%s\nvs\n%s", rendered, again.Render())
	}
	return nil
}

// CheckRoundTrip tokenizes src line by line, renders it canonically, and
// checks that the rendering builds a program with the same statement kinds.
func CheckRoundTrip(src string, opt format.Options) error {
	store, err := linestore.FromLines(opt, strings.Split(strings.TrimSuffix(src, "\n"), "\n"))
	if err != nil {
		return err
	}
	orig, err := parser.Build(store.Tokens())
	if err != nil {
		return fmt.Errorf("original does not build: %w", err)
	}
	again, err := linestore.FromLines(opt, strings.Split(strings.TrimSuffix(store.Render(), "\n"), "\n"))
	if err != nil {
		return fmt.Errorf("rendered text does not tokenize: %w", err)
	}
	prog, err := parser.Build(again.Tokens())
	if err != nil {
		return fmt.Errorf("rendered text does not build: %w", err)
	}
	if prog.Len() != orig.Len() {
		return fmt.Errorf("statement count %d, want %d", prog.Len(), orig.Len())
	}
	for i := range prog.Stmts {
		if prog.Stmts[i].Kind != orig.Stmts[i].Kind || prog.End[i] != orig.End[i] || prog.Next[i] != orig.Next[i] {
			return fmt.Errorf("statement %d differs after round trip", i+1)
		}
	}
	return nil
}

func sameTokens(got, want []token.Token) error {
	if len(got) != len(want) {
		return fmt.Errorf("%d tokens after render, %d stored", len(got), len(want))
	}
	for j := range got {
		if got[j].Kind != want[j].Kind || got[j].Text != want[j].Text {
			return fmt.Errorf("token %d differs: %q vs %q", j, got[j].Text, want[j].Text)
		}
	}
	return nil
}

// CheckHeapBalanced fails when any heap object is still alive, listing the
// leaks oldest first.
func CheckHeapBalanced(h *vm.Heap) error {
	if h.Live() == 0 {
		return nil
	}
	leaks := h.Leaks()
	parts := make([]string, len(leaks))
	for i, l := range leaks {
		parts[i] = l.String()
	}
	return fmt.Errorf("%d object(s) alive: %s", h.Live(), strings.Join(parts, ", "))
}
