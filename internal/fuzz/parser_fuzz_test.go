package fuzztests

import (
	"context"
	"testing"
	"time"

	"lisle/internal/driver"
	"lisle/internal/token"
)

// loadTimeout bounds a single front-end run. Longer means a loop in the
// parser or linker.
const loadTimeout = 5 * time.Second

// FuzzLoadSourceNoHang feeds input through tokenize, per-line parsing and
// block linking, failing on a hang.
func FuzzLoadSourceNoHang(f *testing.F) {
	addCorpusSeeds(f)

	f.Add([]byte("if x\nelif y\nelse\nelse\nend\n"))
	f.Add([]byte("end\nend\nend\n"))
	f.Add([]byte("for i = 1 to\n"))
	f.Add([]byte("module m\nclass C\nfn f()\nend\nend\n"))
	f.Add([]byte("var x = ((((((((((1))))))))))\n"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		done := make(chan *driver.Result, 1)
		go func() {
			res, err := driver.LoadSource(context.Background(), "fuzz.lis", input, driver.Options{MaxDiagnostics: 128})
			if err != nil {
				done <- nil
				return
			}
			done <- res
		}()

		select {
		case res := <-done:
			if res == nil {
				return
			}
			if res.Program != nil && res.Bag.HasErrors() {
				t.Fatalf("program built despite errors\ninput: %q", truncateForLog(input, 200))
			}
		case <-ctx.Done():
			t.Fatalf("front end hang: took longer than %v\ninput (%d bytes): %q",
				loadTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

// FuzzDecodeImage checks that arbitrary bytes never panic the image
// decoder and that accepted images encode back to the same line count.
func FuzzDecodeImage(f *testing.F) {
	f.Add([]byte("nope"))
	f.Add([]byte{})
	for _, src := range []string{"print(1)\n", "var s = \"a\\tb\"\nlet s = s + \"c\"\n"} {
		res, err := driver.LoadSource(context.Background(), "seed.lis", []byte(src), driver.Options{TokensOnly: true})
		if err != nil {
			f.Fatal(err)
		}
		img, err := token.EncodeImage(res.Tokens)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(img)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		lines, err := token.DecodeImage(data)
		if err != nil {
			return
		}
		img, err := token.EncodeImage(lines)
		if err != nil {
			return
		}
		again, err := token.DecodeImage(img)
		if err != nil {
			t.Fatalf("re-encoded image rejected: %v", err)
		}
		if len(again) != len(lines) {
			t.Fatalf("%d lines after round trip, want %d", len(again), len(lines))
		}
	})
}
