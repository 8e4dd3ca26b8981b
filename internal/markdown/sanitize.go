package markdown

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer is the trust boundary between converter output and a live DOM.
// *bluemonday.Policy implements it.
type Sanitizer interface {
	Sanitize(html string) string
}

var generatedClassPattern = regexp.MustCompile(`^(md-image|md-image-link|md-image-block|language-[\w-]+)$`)

// NewPolicy returns the UGC policy extended with the attributes the
// converter itself generates.
func NewPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("div")
	p.AllowAttrs("class").Matching(generatedClassPattern).OnElements("img", "a", "div", "code")
	p.AllowAttrs("loading").Matching(regexp.MustCompile(`^lazy$`)).OnElements("img")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	// bluemonday rebuilds rel itself; keep the noreferrer the converter emits.
	p.RequireNoReferrerOnLinks(true)
	return p
}
