// Package mathfmt rewrites bracket-delimited math in assistant replies into the
// dollar-delimited form understood by markdown math renderers.
//
// Display regions written as \[ ... \] become $$ ... $$ and inline regions written
// as \( ... \) become $ ... $. A table of known formula fragments that models tend
// to emit without any delimiters is wrapped in $ ... $ as well, but only outside
// of the regions above.
package mathfmt

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultFragments are the formula fragments wrapped in inline math when they
// appear as plain text.
var DefaultFragments = []string{
	`K_{газX}`,
	`C_{X-1}`,
	`C_{X-4}`,
	`R_{газj}`,
	`\sum_{j=X-3}^{X-1}`,
}

var (
	displayPattern = regexp.MustCompile(`\\\[(.*?)\\\]`)
	inlinePattern  = regexp.MustCompile(`\\\((.*?)\\\)`)
)

// Placeholders are built only from private-use code points: an opening rune, a
// namespace rune, the index with each digit shifted to U+E010..U+E019 and a
// closing rune. Fragments are plain text, so they never match inside one, and
// the closing rune keeps index 1 from matching a prefix of 10.
const (
	placeholderOpen  = '\uE000'
	placeholderClose = '\uE001'
	digitBase        = '\uE010'

	displayNamespace = '\uE002'
	inlineNamespace  = '\uE003'
)

// Formatter applies the math rewrite with a fixed fragment table.
// A Formatter is immutable and safe for concurrent use.
type Formatter struct {
	fragments []string
	wrapper   *strings.Replacer
}

// New returns a Formatter that wraps the given fragments. Empty entries are
// ignored. A nil or empty table disables fragment wrapping.
func New(fragments []string) *Formatter {
	f := &Formatter{}
	pairs := make([]string, 0, len(fragments)*2)
	for _, frag := range fragments {
		if frag == "" {
			continue
		}
		f.fragments = append(f.fragments, frag)
		pairs = append(pairs, frag, "$"+frag+"$")
	}
	if len(pairs) > 0 {
		f.wrapper = strings.NewReplacer(pairs...)
	}
	return f
}

// Default returns a Formatter using DefaultFragments.
func Default() *Formatter {
	return New(DefaultFragments)
}

// Fragments returns a copy of the fragment table.
func (f *Formatter) Fragments() []string {
	return append([]string(nil), f.fragments...)
}

// Format rewrites text. Text without math delimiters or known fragments is
// returned unchanged.
func (f *Formatter) Format(text string) string {
	text, display := extract(text, displayPattern, displayNamespace)
	text, inline := extract(text, inlinePattern, inlineNamespace)

	// Math content is out of the text at this point, so fragments that appear
	// inside a region are never wrapped twice.
	if f.wrapper != nil {
		text = f.wrapper.Replace(text)
	}

	text = restore(text, displayNamespace, display, "$$")
	// An inline region may have swallowed a display placeholder; restore those
	// too so no placeholder leaks into the output.
	for i := range inline {
		inline[i] = restore(inline[i], displayNamespace, display, "$$")
	}
	return restore(text, inlineNamespace, inline, "$")
}

var defaultFormatter = Default()

// Format rewrites text with the default fragment table.
func Format(text string) string {
	return defaultFormatter.Format(text)
}

// extract replaces every match of re with a numbered placeholder and returns the
// captured contents in discovery order.
func extract(text string, re *regexp.Regexp, namespace rune) (string, []string) {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	contents := make([]string, 0, len(matches))
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		b.WriteString(placeholder(namespace, len(contents)))
		contents = append(contents, text[m[2]:m[3]])
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String(), contents
}

// restore puts contents back in index order, wrapped in delim on both sides.
func restore(text string, namespace rune, contents []string, delim string) string {
	for i, content := range contents {
		text = strings.Replace(text, placeholder(namespace, i), delim+content+delim, 1)
	}
	return text
}

func placeholder(namespace rune, index int) string {
	var b strings.Builder
	b.WriteRune(placeholderOpen)
	b.WriteRune(namespace)
	for _, d := range strconv.Itoa(index) {
		b.WriteRune(digitBase + (d - '0'))
	}
	b.WriteRune(placeholderClose)
	return b.String()
}
