package markdown

import (
	"regexp"
	"strings"
)

// inlineRule is one substitution of the inline pipeline. A rule either
// carries a regexp template in repl or an expand func receiving the
// submatches of each occurrence.
type inlineRule struct {
	name    string
	pattern *regexp.Regexp
	repl    string
	expand  func(groups []string) string
}

func (r inlineRule) apply(s string) string {
	if r.expand == nil {
		return r.pattern.ReplaceAllString(s, r.repl)
	}
	return replaceAllSubmatchFunc(r.pattern, s, r.expand)
}

// inlineRules is applied in order. Bold must run before italic, and images
// before links, otherwise the shorter pattern eats the longer construct.
var inlineRules = []inlineRule{
	{
		name:    "break",
		pattern: regexp.MustCompile(`\n`),
		repl:    "<br>",
	},
	{
		name:    "code",
		pattern: regexp.MustCompile("`([^`]+)`"),
		repl:    "<code>${1}</code>",
	},
	{
		name:    "strikethrough",
		pattern: regexp.MustCompile(`~~([^~]+)~~`),
		repl:    "<del>${1}</del>",
	},
	{
		name:    "bold",
		pattern: regexp.MustCompile(`\*\*([^*]+)\*\*`),
		repl:    "<strong>${1}</strong>",
	},
	{
		name:    "bold",
		pattern: regexp.MustCompile(`__([^_]+)__`),
		repl:    "<strong>${1}</strong>",
	},
	{
		name:    "italic",
		pattern: regexp.MustCompile(`\*([^*]+)\*`),
		repl:    "<em>${1}</em>",
	},
	{
		name:    "italic",
		pattern: regexp.MustCompile(`_([^_]+)_`),
		repl:    "<em>${1}</em>",
	},
	{
		name:    "image",
		pattern: regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`),
		expand: func(groups []string) string {
			return imageTag(groups[2], groups[1], false)
		},
	},
	{
		name:    "link",
		pattern: regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`),
		repl:    `<a href="${2}" target="_blank" rel="noopener noreferrer">${1}</a>`,
	},
}

// parseInline runs text through every inline rule. Callers must escape text
// first; the rules only add markup around what is already there.
func parseInline(text string) string {
	for _, rule := range inlineRules {
		text = rule.apply(text)
	}
	return text
}

func replaceAllSubmatchFunc(re *regexp.Regexp, s string, fn func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = s[m[2*i]:m[2*i+1]]
			}
		}
		b.WriteString(fn(groups))
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
