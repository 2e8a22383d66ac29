package fuzztests

import (
	"strings"
	"testing"

	"lisle/internal/diag"
	"lisle/internal/format"
	"lisle/internal/lexer"
	"lisle/internal/linestore"
	"lisle/internal/testkit"
)

func FuzzLexerLines(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		lines := strings.Split(strings.TrimSuffix(string(input), "\n"), "\n")

		bag := diag.NewBag(64)
		reporter := diag.BagReporter{Bag: bag}
		clean := true
		for i, line := range lines {
			if _, err := lexer.TokenizeWith(line, lexer.Options{Line: uint32(i + 1), Reporter: reporter}); err != nil { // #nosec G115 -- bounded by maxFuzzInput
				clean = false
			}
		}
		if !clean {
			return
		}
		// всё, что токенизируется, обязано стабильно рендериться
		store, err := linestore.FromLines(format.Options{}, lines)
		if err != nil {
			return
		}
		if err := testkit.CheckRenderInvariants(store); err != nil {
			t.Fatalf("%v\ninput: %q", err, truncateForLog(input, 200))
		}
	})
}
