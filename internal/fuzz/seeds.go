package fuzztests

import (
	"path/filepath"
	"testing"

	"lisle/internal/fixture"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB: ограничение для тестового корпуса
	maxFuzzInput = 1 << 16
)

func addCorpusSeeds(f *testing.F) {
	addScenarioSeeds(f)
	f.Add([]byte{})
	f.Add([]byte("print(\"hi\")\n"))
	f.Add([]byte("fn f(a, b)\n    return a + b\nend\nprint(f(1, 2))\n"))
	f.Add([]byte("class P\n    var n = 0\n    fn init(self)\n        let self.x = 1\n    end\nend\n"))
}

// addScenarioSeeds uses every conformance scenario as a seed.
func addScenarioSeeds(f *testing.F) {
	files, err := fixture.LoadDir(filepath.Join("..", "fixture", "testdata"))
	if err != nil {
		return
	}
	for _, file := range files {
		for _, sc := range file.Scenarios {
			f.Add(clampSeed([]byte(sc.Source)))
		}
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

// truncateForLog shortens input for failure messages.
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
