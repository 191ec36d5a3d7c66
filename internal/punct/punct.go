// Package punct provides display transforms for separator punctuation.
package punct

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"braces.dev/errtrace"
	"golang.org/x/text/width"
)

// FullWidth replaces ASCII punctuation and symbols in s
// with their full-width forms.
// For example, "," becomes "，".
// Other characters are left alone.
func FullWidth(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !(unicode.IsPunct(r) || unicode.IsSymbol(r)) {
			return r
		}
		if w := width.LookupRune(r).Wide(); w != 0 {
			return w
		}
		return r
	}, s)
}

var _transforms = map[string]func(string) string{
	"none":      nil,
	"fullwidth": FullWidth,
}

// Names lists the names accepted by Lookup in sorted order.
func Names() []string {
	names := make([]string, 0, len(_transforms))
	for name := range _transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the transform with the given name.
// The "none" transform is nil.
func Lookup(name string) (func(string) string, error) {
	fn, ok := _transforms[strings.ToLower(name)]
	if !ok {
		return nil, errtrace.Wrap(fmt.Errorf("unknown transform %q: valid values are %q", name, Names()))
	}
	return fn, nil
}
