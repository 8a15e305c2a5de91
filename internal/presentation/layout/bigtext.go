package layout

import "strings"

// BigTextHeight is the number of rows a big glyph occupies
const BigTextHeight = 5

var bigGlyphs = map[rune][BigTextHeight]string{
	'0': {"█████", "█   █", "█   █", "█   █", "█████"},
	'1': {"  ██ ", "   █ ", "   █ ", "   █ ", "  ███"},
	'2': {"█████", "    █", "█████", "█    ", "█████"},
	'3': {"█████", "    █", " ████", "    █", "█████"},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "█████", "    █", "█████"},
	'6': {"█████", "█    ", "█████", "█   █", "█████"},
	'7': {"█████", "    █", "   █ ", "  █  ", "  █  "},
	'8': {"█████", "█   █", "█████", "█   █", "█████"},
	'9': {"█████", "█   █", "█████", "    █", "█████"},
	':': {" ", "█", " ", "█", " "},
	's': {"    ", " ███", " █▄▄", " ▄▄█", " ███"},
	'G': {"█████", "█    ", "█  ██", "█   █", "█████"},
	'O': {"█████", "█   █", "█   █", "█   █", "█████"},
	'!': {"█", "█", "█", " ", "█"},
	' ': {"  ", "  ", "  ", "  ", "  "},
}

// BigText renders s in block glyphs, one string per row. Runes without a
// glyph are skipped.
func BigText(s string) []string {
	rows := make([]strings.Builder, BigTextHeight)
	first := true
	for _, r := range s {
		glyph, ok := bigGlyphs[r]
		if !ok {
			continue
		}
		for i := range rows {
			if !first {
				rows[i].WriteString(" ")
			}
			rows[i].WriteString(glyph[i])
		}
		first = false
	}

	out := make([]string, BigTextHeight)
	for i := range rows {
		out[i] = rows[i].String()
	}
	return out
}

// BigTextWidth is the display width of BigText(s)
func BigTextWidth(s string) int {
	rows := BigText(s)
	return sharedSizer.displayWidth(rows[0])
}
