// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/huangsam/asmstats/internal/contract"
	"golang.org/x/term"
)

const (
	defaultTermWidth = 80 // Conservative default for narrow terminals and CI
	minBarWidth      = 20
	maxBarWidth      = 100
)

// terminalWidth returns the width override, the detected terminal width, or a default.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return defaultTermWidth
	}
	return detectedWidth
}

// GetBarWidth calculates the number of cells in a BUSCO bar. An explicit
// --bar-width wins; otherwise the bar fills the terminal minus its frame.
func GetBarWidth(cfg *contract.Config) int {
	if cfg.BarWidth > 0 {
		return cfg.BarWidth
	}
	// Reserve space for the indent and the bar brackets
	available := terminalWidth(cfg) - 6
	return min(max(available, minBarWidth), maxBarWidth)
}
