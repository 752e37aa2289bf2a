package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// digitMap maps each digit character (0-9) and colon to a 5-line ASCII representation.
// Each digit is 4 chars wide, colon is 1 char wide.
var digitMap = map[rune][glyphRows]string{
	'0': {
		"████",
		"█  █",
		"█  █",
		"█  █",
		"████",
	},
	'1': {
		" █ ",
		"██ ",
		" █ ",
		" █ ",
		"███",
	},
	'2': {
		"████",
		"   █",
		"████",
		"█   ",
		"████",
	},
	'3': {
		"████",
		"   █",
		"████",
		"   █",
		"████",
	},
	'4': {
		"█  █",
		"█  █",
		"████",
		"   █",
		"   █",
	},
	'5': {
		"████",
		"█   ",
		"████",
		"   █",
		"████",
	},
	'6': {
		"████",
		"█   ",
		"████",
		"█  █",
		"████",
	},
	'7': {
		"████",
		"   █",
		"  █ ",
		" █  ",
		" █  ",
	},
	'8': {
		"████",
		"█  █",
		"████",
		"█  █",
		"████",
	},
	'9': {
		"████",
		"█  █",
		"████",
		"   █",
		"████",
	},
	':': {
		" ",
		"█",
		" ",
		"█",
		" ",
	},
}

// glyphRows is the height of every glyph in digitMap.
const glyphRows = 5

// minBigTimeWidth is the narrowest terminal that gets the large clock.
const minBigTimeWidth = 40

// renderBigTime draws an "MM:SS" string with digitMap glyphs. Narrow
// terminals get a single bold line instead.
func renderBigTime(timeStr string, color lipgloss.Color, width int) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(color)
	if width < minBigTimeWidth {
		return style.Render(timeStr)
	}

	var rows [glyphRows][]string
	for _, ch := range timeStr {
		glyph, ok := digitMap[ch]
		if !ok {
			continue
		}
		for i := range glyphRows {
			rows[i] = append(rows[i], glyph[i])
		}
	}

	styled := make([]string, glyphRows)
	for i, parts := range rows {
		styled[i] = style.Render(strings.Join(parts, " "))
	}
	return strings.Join(styled, "\n")
}
