package markdown

import (
	"regexp"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape replaces &, <, >, " and ' with their HTML entities.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

var safeURLPattern = regexp.MustCompile(`(?i)^https?://`)

func isSafeURL(url string) bool {
	return safeURLPattern.MatchString(url)
}

// imageTag builds the markup for an image whose url and alt are already
// escaped. Only http(s) images get a clickable wrapper; other schemes keep
// the bare <img>.
func imageTag(url, alt string, block bool) string {
	tag := `<img src="` + url + `" alt="` + alt + `" class="md-image" loading="lazy">`
	if isSafeURL(url) {
		tag = `<a href="` + url + `" target="_blank" rel="noopener noreferrer" class="md-image-link">` + tag + `</a>`
	}
	if block {
		tag = `<div class="md-image-block">` + tag + `</div>`
	}
	return tag
}
