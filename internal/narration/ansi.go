package narration

import (
	"regexp"
	"strings"
)

// ANSI escape code constants for terminal styling.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"

	Red          = "\033[31m"
	Green        = "\033[32m"
	BrightYellow = "\033[93m"
	BrightWhite  = "\033[97m"
)

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns text wrapped with the color code and Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

var numberPattern = regexp.MustCompile(`-?\d+`)

// HighlightNumbers renders every integer in text in bold bright yellow.
// Damage and vitality figures are the only numbers narration contains.
func HighlightNumbers(text string) string {
	return numberPattern.ReplaceAllStringFunc(text, func(n string) string {
		return Colorize(Bold+BrightYellow, n)
	})
}

// Palette is the default coloring for narration lines. Outcome lines are
// colored whole; elsewhere only numbers are highlighted.
func Palette(text string) string {
	switch {
	case strings.HasSuffix(text, " wins"):
		return Colorize(Bold+Green, text)
	case strings.HasSuffix(text, " collapses!"):
		return Colorize(Red, text)
	}
	if name, hp, ok := strings.Cut(text, " HP: "); ok {
		return Colorize(BrightWhite, name) + " HP: " + HighlightNumbers(hp)
	}
	return HighlightNumbers(text)
}
