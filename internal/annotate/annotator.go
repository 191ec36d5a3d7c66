// Package annotate attaches hover hints to the repetition markers
// and separators of grammar notations in rendered HTML.
//
// Notations are expected to be rendered in the following shape:
//
//	<span class="repeat-wrapper">
//	  <span class="repeat">...</span>
//	  <sup>*</sup>
//	  <sub>,</sub>
//	</span>
//
// The sup holds the marker, and the optional sub holds the separator.
package annotate

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"regexp"
	"slices"
	"strings"

	"braces.dev/errtrace"
	"github.com/andybalholm/cascadia"
	"go.abhg.dev/notahint/internal/hint"
	"golang.org/x/net/html"
)

// DefaultWrapper is the class of elements wrapping repeated blocks
// if Annotator.Wrapper is unset.
const DefaultWrapper = "repeat-wrapper"

// _separatorAttr records the separator text before a Transform
// so that re-running the annotator describes the original text.
const _separatorAttr = "data-separator"

// _classPattern matches class names usable in a class selector
// without escaping.
var _classPattern = regexp.MustCompile(`^-?[_a-zA-Z][_a-zA-Z0-9-]*$`)

var (
	_markerClasses    = []string{"hint--top", "hint--rounded"}
	_separatorClasses = []string{"hint--bottom", "hint--rounded"}
)

// Annotator attaches hints to notation markers and separators.
//
// The zero value is ready to use.
type Annotator struct {
	// Style of hints to attach.
	Style Style

	// Class of wrapper elements.
	// Defaults to DefaultWrapper.
	Wrapper string

	// Transform, if set, rewrites the displayed text of separators.
	// Hints always describe the separator text as it was
	// before the transform.
	Transform func(string) string

	// Log receives a message for every marker
	// that could not be described.
	// Discards by default.
	Log *log.Logger
}

// Stats reports what an Annotate call did.
type Stats struct {
	Markers      int // markers annotated
	Separators   int // separators annotated
	Unrecognized int // markers with an unknown glyph
}

// Add adds the counts of o to s.
func (s *Stats) Add(o Stats) {
	s.Markers += o.Markers
	s.Separators += o.Separators
	s.Unrecognized += o.Unrecognized
}

func (s Stats) String() string {
	return fmt.Sprintf("%d markers, %d separators, %d unrecognized",
		s.Markers, s.Separators, s.Unrecognized)
}

// Selectors returns the selectors matching marker and separator slots
// for this annotator's wrapper class.
func (a *Annotator) Selectors() (marker, separator cascadia.Selector, err error) {
	wrapper := a.Wrapper
	if wrapper == "" {
		wrapper = DefaultWrapper
	}
	if !_classPattern.MatchString(wrapper) {
		return nil, nil, errtrace.Wrap(fmt.Errorf("invalid wrapper class %q", wrapper))
	}

	marker, err = cascadia.Compile("." + wrapper + " > sup")
	if err != nil {
		return nil, nil, errtrace.Wrap(fmt.Errorf("wrapper class %q: %w", wrapper, err))
	}
	separator, err = cascadia.Compile("." + wrapper + " > sub")
	if err != nil {
		return nil, nil, errtrace.Wrap(fmt.Errorf("wrapper class %q: %w", wrapper, err))
	}
	return marker, separator, nil
}

// Annotate attaches hints to all markers and separators in doc.
// Element text is left unchanged unless a Transform is set.
//
// Annotate may be called on the same tree any number of times.
// Each call overwrites the previous hints with the same values.
func (a *Annotator) Annotate(doc *html.Node) (Stats, error) {
	markerSel, sepSel, err := a.Selectors()
	if err != nil {
		return Stats{}, errtrace.Wrap(err)
	}

	logger := a.Log
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	var stats Stats
	for _, n := range cascadia.QueryAll(doc, markerSel) {
		glyph := textContent(n)
		if text, ok := hint.Marker(glyph); ok {
			setAttr(n, a.Style.attr(), text)
			stats.Markers++
		} else {
			logger.Printf("unrecognized marker %q", glyph)
			stats.Unrecognized++
		}
		if a.Style == HintStyle {
			addClass(n, _markerClasses...)
		}
	}

	for _, n := range cascadia.QueryAll(doc, sepSel) {
		sep, ok := getAttr(n, _separatorAttr)
		if !ok {
			sep = textContent(n)
		}
		setAttr(n, a.Style.attr(), hint.Separator(sep))
		if a.Style == HintStyle {
			addClass(n, _separatorClasses...)
		}
		if a.Transform != nil {
			if display := a.Transform(sep); display != sep {
				setAttr(n, _separatorAttr, sep)
				setText(n, display)
			}
		}
		stats.Separators++
	}

	return stats, nil
}

// Document reads an HTML document from r, annotates it,
// and writes the result to w.
func (a *Annotator) Document(w io.Writer, r io.Reader) (Stats, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Stats{}, errtrace.Wrap(fmt.Errorf("parse: %w", err))
	}

	stats, err := a.Annotate(doc)
	if err != nil {
		return stats, errtrace.Wrap(err)
	}

	if err := html.Render(w, doc); err != nil {
		return stats, errtrace.Wrap(fmt.Errorf("render: %w", err))
	}
	return stats, nil
}

func textContent(n *html.Node) string {
	var buf bytes.Buffer
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return buf.String()
}

// setText replaces the children of n with a single text node.
func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// addClass adds the given classes to n, skipping those already present.
func addClass(n *html.Node, classes ...string) {
	current, _ := getAttr(n, "class")
	have := strings.Fields(current)
	for _, c := range classes {
		if !slices.Contains(have, c) {
			have = append(have, c)
		}
	}
	setAttr(n, "class", strings.Join(have, " "))
}
