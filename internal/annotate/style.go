package annotate

import (
	"flag"
	"fmt"
	"strings"
)

// Style specifies how hints are attached to elements.
type Style int

const (
	// HintStyle sets a data-hint attribute on each element
	// and adds hint.css presentation classes to it.
	//
	// Markers are given a tooltip above the element,
	// and separators a tooltip below it.
	HintStyle Style = iota

	// TitleStyle sets the title attribute on each element
	// so that browsers render a native tooltip.
	TitleStyle
)

var _styleNames = map[Style]string{
	HintStyle:  "hint",
	TitleStyle: "title",
}

var _ flag.Getter = (*Style)(nil)

// String returns the name of this style.
func (s Style) String() string {
	if name, ok := _styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// Get returns the Style.
// This is to comply with the [flag.Getter] interface.
func (s *Style) Get() any { return *s }

// Set receives a style name from the command line.
func (s *Style) Set(name string) error {
	name = strings.TrimSpace(strings.ToLower(name))
	for style, n := range _styleNames {
		if n == name {
			*s = style
			return nil
		}
	}
	return fmt.Errorf("unknown style %q: valid values are %q", name, []string{"hint", "title"})
}

// attr is the name of the attribute holding the hint.
func (s Style) attr() string {
	if s == TitleStyle {
		return "title"
	}
	return "data-hint"
}
