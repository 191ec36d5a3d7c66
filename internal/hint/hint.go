// Package hint holds the descriptive text shown for grammar notation
// markers and separators.
//
// A marker is the superscript glyph after a repeated block
// (?, * or +) and a separator is the subscript text
// that goes between repetitions of that block.
package hint

var _markers = map[string]string{
	"?": "This block is optional.",
	"*": "This block is optional, and may be repeated.",
	"+": "This block may be repeated.",
}

// Marker returns the hint for a repetition marker glyph.
// It reports false if the glyph is not a known marker.
func Marker(glyph string) (string, bool) {
	s, ok := _markers[glyph]
	return s, ok
}

// Separator returns the hint for a separator.
// The separator is inserted as-is, without escaping.
func Separator(text string) string {
	return `Use "` + text + `" to separate repetitions of this block.`
}
