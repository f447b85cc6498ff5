// Package telnet serves the game over Telnet and provides the ANSI styling
// used by every text renderer, console included.
package telnet

import (
	"fmt"
	"strings"
)

// ANSI styles used by the game's renderers.
const (
	Reset = "\033[0m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Cyan    = "\033[36m"
	Magenta = "\033[35m"

	BrightRed    = "\033[91m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"
)

// Colorize wraps text in style and a trailing Reset.
func Colorize(style, text string) string {
	return style + text + Reset
}

// Colorf formats and wraps the result in style and a trailing Reset.
func Colorf(style, format string, args ...any) string {
	return style + fmt.Sprintf(format, args...) + Reset
}

// StripANSI removes SGR escape sequences (ESC [ ... m). The console uses it
// when colour is off; tests use it to compare rendered text.
func StripANSI(s string) string {
	if !strings.Contains(s, "\033[") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			if end := strings.IndexByte(s[i+2:], 'm'); end >= 0 {
				i += end + 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
