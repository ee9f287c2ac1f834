package surface

import "fmt"

// Charset selects the glyphs the cell surface shades with.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetBlocks
	CharsetBraille
)

// ParseCharset maps a config/flag value onto a Charset.
func ParseCharset(name string) (Charset, error) {
	switch name {
	case "", "ascii":
		return CharsetASCII, nil
	case "blocks", "block":
		return CharsetBlocks, nil
	case "braille":
		return CharsetBraille, nil
	}
	return CharsetASCII, fmt.Errorf("unknown charset %q (want ascii, blocks or braille)", name)
}

func (c Charset) String() string {
	switch c {
	case CharsetBlocks:
		return "blocks"
	case CharsetBraille:
		return "braille"
	default:
		return "ascii"
	}
}

// densityToChar picks a glyph whose ink coverage matches density (0..1).
func densityToChar(density float64, charset Charset) rune {
	switch charset {
	case CharsetBraille:
		return densityToBraille(density)
	case CharsetBlocks:
		return densityToBlock(density)
	default:
		return densityToASCII(density)
	}
}

func densityToBraille(density float64) rune {
	switch {
	case density >= 1.0:
		return '⣿'
	case density > 0.9:
		return '⣾'
	case density > 0.8:
		return '⣶'
	case density > 0.7:
		return '⣦'
	case density > 0.6:
		return '⣤'
	case density > 0.5:
		return '⣀'
	case density > 0.4:
		return '⡀'
	case density > 0.3:
		return '⠄'
	case density > 0.2:
		return '⠂'
	case density > 0.1:
		return '⠁'
	}
	return ' '
}

func densityToBlock(density float64) rune {
	switch {
	case density >= 1.0:
		return '█'
	case density > 0.875:
		return '▓'
	case density > 0.75:
		return '▒'
	case density > 0.625:
		return '░'
	case density > 0.5:
		return '▄'
	case density > 0.375:
		return '▃'
	case density > 0.25:
		return '▂'
	case density > 0.125:
		return '▁'
	}
	return ' '
}

func densityToASCII(density float64) rune {
	switch {
	case density >= 1.0:
		return '@'
	case density > 0.8:
		return '#'
	case density > 0.6:
		return '%'
	case density > 0.4:
		return 'o'
	case density > 0.3:
		return '='
	case density > 0.2:
		return '+'
	case density > 0.15:
		return '-'
	case density > 0.1:
		return '.'
	case density > 0.05:
		return '`'
	}
	return ' '
}

// lineGlyph picks an ASCII glyph following the direction of a stroke, given
// the step in cell columns and rows.
func lineGlyph(dcol, drow float64) rune {
	if dcol < 0 {
		dcol, drow = -dcol, -drow
	}
	switch {
	case drow == 0 || dcol > 2*abs(drow):
		return '-'
	case dcol == 0 || abs(drow) > 2*dcol:
		return '|'
	case drow > 0:
		return '\\'
	default:
		return '/'
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
