package markdown

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const fence = "```"

// space is the whitespace class markers are separated by. It covers the
// Unicode space separators, the line terminators and the byte order mark,
// which is wider than RE2's ASCII-only \s.
const space = `[\t\n\v\f\r\p{Zs}\x{2028}\x{2029}\x{feff}]`

// lineChar is any character that does not end a line.
const lineChar = `[^\n\r\x{2028}\x{2029}]`

var (
	fenceLangPattern     = regexp.MustCompile("^```(\\w+)?")
	rulePattern          = regexp.MustCompile(`^(-{3,}|\*{3,}|_{3,})$`)
	headingPattern       = regexp.MustCompile(`^(#+)` + space + `+(` + lineChar + `+)$`)
	blockImagePattern    = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)]+)\)$`)
	unorderedItemPattern = regexp.MustCompile(`^[-*+]` + space + `+`)
	orderedItemPattern   = regexp.MustCompile(`^\d+\.` + space + `+`)
)

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\u2028', '\u2029', '\ufeff':
		return true
	}
	return unicode.In(r, unicode.Zs)
}

// trim strips leading and trailing whitespace, a byte order mark included.
func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// blockRule tries to consume a block starting at lines[i]. On a match it
// returns the block's HTML and the index of the first line it did not
// consume, which is always greater than i.
type blockRule func(lines []string, i int) (html string, next int, ok bool)

// blockRules is checked in order at every line; the first match wins.
// scanParagraph accepts anything so the scan always makes progress.
var blockRules = []blockRule{
	scanBlank,
	scanFence,
	scanRule,
	scanHeading,
	scanImage,
	scanQuote,
	scanList(unorderedItemPattern, "ul"),
	scanList(orderedItemPattern, "ol"),
	scanParagraph,
}

func parseBlocks(text string) string {
	lines := strings.Split(text, "\n")

	var out strings.Builder
	for i := 0; i < len(lines); {
		for _, rule := range blockRules {
			html, next, ok := rule(lines, i)
			if !ok {
				continue
			}
			out.WriteString(html)
			i = next
			break
		}
	}
	return out.String()
}

func scanBlank(lines []string, i int) (string, int, bool) {
	if trim(lines[i]) != "" {
		return "", i, false
	}
	return "", i + 1, true
}

// scanFence collects everything up to the closing fence as escaped code. A
// fence that is never closed runs to the end of the input.
func scanFence(lines []string, i int) (string, int, bool) {
	trimmed := trim(lines[i])
	if !strings.HasPrefix(trimmed, fence) {
		return "", i, false
	}

	class := ""
	if m := fenceLangPattern.FindStringSubmatch(trimmed); m != nil && m[1] != "" {
		class = ` class="language-` + Escape(m[1]) + `"`
	}

	var code []string
	j := i + 1
	for ; j < len(lines) && !strings.HasPrefix(trim(lines[j]), fence); j++ {
		code = append(code, Escape(lines[j]))
	}
	if j < len(lines) {
		j++
	}

	return "<pre><code" + class + ">" + strings.Join(code, "\n") + "</code></pre>", j, true
}

func scanRule(lines []string, i int) (string, int, bool) {
	if !rulePattern.MatchString(trim(lines[i])) {
		return "", i, false
	}
	return "<hr>", i + 1, true
}

func scanHeading(lines []string, i int) (string, int, bool) {
	m := headingPattern.FindStringSubmatch(trim(lines[i]))
	if m == nil {
		return "", i, false
	}
	level := min(len(m[1]), 6)
	return fmt.Sprintf("<h%d>%s</h%d>", level, parseInline(Escape(m[2])), level), i + 1, true
}

func scanImage(lines []string, i int) (string, int, bool) {
	m := blockImagePattern.FindStringSubmatch(trim(lines[i]))
	if m == nil {
		return "", i, false
	}
	return imageTag(Escape(m[2]), Escape(m[1]), true), i + 1, true
}

// scanQuote joins a run of ">" lines into a single blockquote. The run ends
// at the first line without the marker, blank lines included.
func scanQuote(lines []string, i int) (string, int, bool) {
	var quoted []string
	j := i
	for ; j < len(lines); j++ {
		trimmed := trim(lines[j])
		if !strings.HasPrefix(trimmed, ">") {
			break
		}
		quoted = append(quoted, trim(trimmed[1:]))
	}
	if j == i {
		return "", i, false
	}
	return "<blockquote>" + parseInline(Escape(strings.Join(quoted, "\n"))) + "</blockquote>", j, true
}

// scanList builds a rule for a list whose items are introduced by marker.
// Every physical line is one item; numbering in the source is ignored.
func scanList(marker *regexp.Regexp, tag string) blockRule {
	return func(lines []string, i int) (string, int, bool) {
		var b strings.Builder
		j := i
		for ; j < len(lines); j++ {
			trimmed := trim(lines[j])
			loc := marker.FindStringIndex(trimmed)
			if loc == nil {
				break
			}
			b.WriteString("<li>" + parseInline(Escape(trimmed[loc[1]:])) + "</li>")
		}
		if j == i {
			return "", i, false
		}
		return "<" + tag + ">" + b.String() + "</" + tag + ">", j, true
	}
}

func scanParagraph(lines []string, i int) (string, int, bool) {
	return "<p>" + parseInline(Escape(trim(lines[i]))) + "</p>", i + 1, true
}
