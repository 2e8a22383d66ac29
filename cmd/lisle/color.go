package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

func applyColorMode(mode string) error {
	switch strings.ToLower(mode) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "", "auto":
		// fatih/color already checks the terminal and NO_COLOR
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// useColor decides colouring for output written to w.
func (a *app) useColor(w io.Writer) bool {
	switch strings.ToLower(a.opts.color) {
	case "on":
		return true
	case "off":
		return false
	}
	return !color.NoColor && isTerminal(w)
}
