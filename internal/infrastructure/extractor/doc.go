package extractor

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// minRunLength filters out stray printable bytes inside binary sections.
const minRunLength = 4

// extractDOC scavenges readable text from a legacy binary .doc file. The CFB
// container is not parsed structurally; instead printable ASCII and UTF-16LE
// runs are collected, which recovers body text for typical Word 97-2003
// documents. The two harvests see each other's text as noise (UTF-16LE ASCII
// shows up as NUL-interleaved single bytes, ASCII pairs decode to spurious
// wide characters), so only the harvest that recovered more text is kept.
func extractDOC(buf []byte) (string, error) {
	ascii := asciiRuns(buf)
	wide := utf16Runs(buf)

	runs := ascii
	if runeCount(wide) > runeCount(ascii) {
		runs = wide
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no readable text in doc file")
	}
	return strings.Join(runs, "\n"), nil
}

func runeCount(runs []string) int {
	var n int
	for _, run := range runs {
		n += utf8.RuneCountInString(run)
	}
	return n
}

func asciiRuns(buf []byte) []string {
	var runs []string
	var current strings.Builder
	flush := func() {
		if current.Len() >= minRunLength {
			runs = append(runs, current.String())
		}
		current.Reset()
	}
	for _, b := range buf {
		switch {
		case b == '\r' || b == '\n' || b == '\t':
			current.WriteByte(' ')
		case b >= 0x20 && b < 0x7f:
			current.WriteByte(b)
		default:
			flush()
		}
	}
	flush()
	return runs
}

func utf16Runs(buf []byte) []string {
	var runs []string
	var current []uint16
	flush := func() {
		if len(current) >= minRunLength {
			runs = append(runs, string(utf16.Decode(current)))
		}
		current = current[:0]
	}
	for i := 0; i+1 < len(buf); i += 2 {
		u := uint16(buf[i]) | uint16(buf[i+1])<<8
		switch {
		case u == '\r' || u == '\n' || u == '\t':
			current = append(current, ' ')
		// ASCII text stored as UTF-16LE arrives as code units below 0x80;
		// they must extend the run, not break it.
		case u >= 0x20 && u < 0xd800 && unicode.IsPrint(rune(u)):
			current = append(current, u)
		default:
			flush()
		}
	}
	flush()
	return runs
}
