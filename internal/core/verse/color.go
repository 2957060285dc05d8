package verse

import (
	"fmt"
	"strings"
)

// HighlightColor is the colour of a verse highlight. The zero value means
// the verse is not highlighted.
type HighlightColor string

const (
	NoHighlight HighlightColor = ""
	Yellow      HighlightColor = "yellow"
	Green       HighlightColor = "green"
	Blue        HighlightColor = "blue"
	Pink        HighlightColor = "pink"
	Orange      HighlightColor = "orange"
)

// HighlightColors lists every selectable colour in picker order.
var HighlightColors = []HighlightColor{Yellow, Green, Blue, Pink, Orange}

// ParseHighlightColor accepts a colour name, case-insensitively. "", "none"
// and "clear" map to NoHighlight.
func ParseHighlightColor(s string) (HighlightColor, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none", "clear":
		return NoHighlight, nil
	}
	for _, c := range HighlightColors {
		if string(c) == s {
			return c, nil
		}
	}
	return NoHighlight, fmt.Errorf("invalid highlight color %q (expected: yellow|green|blue|pink|orange|none)", s)
}

// Valid reports whether c is NoHighlight or one of HighlightColors.
func (c HighlightColor) Valid() bool {
	if c == NoHighlight {
		return true
	}
	for _, hc := range HighlightColors {
		if hc == c {
			return true
		}
	}
	return false
}

func (c HighlightColor) DisplayName() string {
	if c == NoHighlight {
		return "None"
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}
