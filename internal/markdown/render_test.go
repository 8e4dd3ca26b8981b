package markdown

import (
	"bytes"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingEngine struct{ err error }

func (e failingEngine) Name() string                   { return "failing" }
func (e failingEngine) Convert(string) (string, error) { return "", e.err }

type panickingEngine struct{}

func (panickingEngine) Name() string { return "panicking" }
func (panickingEngine) Convert(string) (string, error) {
	var lines []string
	return lines[3], nil
}

func TestRender(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		contains    string
		notContains string
	}{
		{
			name:     "Bold",
			input:    "**Hello**",
			contains: "<strong>Hello</strong>",
		},
		{
			name:     "Italic",
			input:    "*World*",
			contains: "<em>World</em>",
		},
		{
			name:        "XSS",
			input:       "<script>alert('xss')</script>",
			notContains: "<script>",
		},
		{
			name:     "Strikethrough",
			input:    "~~Strike~~",
			contains: "<del>Strike</del>",
		},
		{
			name:     "Link",
			input:    "[Google](https://google.com)",
			contains: `href="https://google.com"`,
		},
		{
			name:     "Code language class survives",
			input:    "```go\nx := 1\n```",
			contains: `<code class="language-go">x := 1</code>`,
		},
		{
			name:     "Image attributes survive",
			input:    "![cat](https://x/cat.png)",
			contains: `class="md-image"`,
		},
		{
			name:        "Unsafe image source is dropped",
			input:       "![x](javascript:alert(1))",
			notContains: "javascript:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.input)
			if tt.contains != "" && !strings.Contains(string(got), tt.contains) {
				t.Errorf("Render() = %q, want to contain %q", got, tt.contains)
			}
			if tt.notContains != "" && strings.Contains(string(got), tt.notContains) {
				t.Errorf("Render() = %q, want NOT to contain %q", got, tt.notContains)
			}
		})
	}
}

func TestRenderKeepsNoReferrer(t *testing.T) {
	got := string(Render("[x](http://y) ![i](http://z/i.png)"))

	relPattern := regexp.MustCompile(`<a [^>]*rel="([^"]*)"`)
	rels := relPattern.FindAllStringSubmatch(got, -1)
	require.Len(t, rels, 2, got)
	for _, rel := range rels {
		assert.Contains(t, rel[1], "noreferrer")
		assert.Contains(t, rel[1], "noopener")
	}
	assert.Contains(t, got, `class="md-image-link"`)
}

func TestTransformEmpty(t *testing.T) {
	assert.Equal(t, "", string(Transform("")))
	assert.Equal(t, "", string(New(WithEngine(panickingEngine{})).Render("")))
}

func TestTransformEscapesUserContent(t *testing.T) {
	inputs := []string{
		"<script>alert(1)</script>",
		`"quoted" & 'single'`,
		"# <b>head</b>",
		"> <i>quote</i>",
		"- <li>item</li>",
		`[x](" onmouseover="alert(1))`,
		`![" onerror="alert(1)](http://x)`,
		"`<code>`",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got := string(Transform(input))
			assert.NotContains(t, got, "<script")
			assert.NotContains(t, got, "<b>")
			assert.NotContains(t, got, "<i>")
			assert.NotContains(t, got, "<li><li>")
			assert.NotContains(t, got, `" onmouseover`)
			assert.NotContains(t, got, `" onerror`)
			assert.NotContains(t, got, "<code><code>")
		})
	}
}

func TestTransformSpecialCases(t *testing.T) {
	t.Run("fence precedence", func(t *testing.T) {
		got := string(Transform("```\n# not a heading\n```"))
		assert.Equal(t, "<pre><code># not a heading</code></pre>", got)
		assert.NotContains(t, got, "<h1>")
	})

	t.Run("image before link", func(t *testing.T) {
		got := string(Transform("![alt](http://x/y.png)"))
		assert.Contains(t, got, `<img src="http://x/y.png" alt="alt"`)
		assert.NotContains(t, got, ">![alt<")
	})

	t.Run("bold has no stray em", func(t *testing.T) {
		assert.Equal(t, "<p><strong>bold</strong></p>", string(Transform("**bold**")))
		assert.Equal(t, "<p><em>italic</em></p>", string(Transform("*italic*")))
	})

	t.Run("unsafe image scheme is not linked", func(t *testing.T) {
		got := string(Transform("![x](javascript:alert(1))"))
		assert.Contains(t, got, `<img src="javascript:alert(1"`)
		assert.NotContains(t, got, "<a ")
	})
}

func TestTransformFallback(t *testing.T) {
	input := "# <b>hi</b> & 'x'\n- item"

	tests := []struct {
		name   string
		engine Engine
	}{
		{"error", failingEngine{err: errors.New("boom")}},
		{"panic", panickingEngine{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			r := New(
				WithEngine(tt.engine),
				WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
			)

			got := r.Transform(input)
			assert.Equal(t, Escape(input), string(got))
			assert.Contains(t, logs.String(), "error parsing markdown")
			assert.Contains(t, logs.String(), "engine="+tt.engine.Name())
		})
	}
}

func TestTransformInvalidUTF8(t *testing.T) {
	var logs bytes.Buffer
	r := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	input := "**a**\xff<b>"
	assert.Equal(t, Escape(input), string(r.Transform(input)))
	assert.Contains(t, logs.String(), ErrInvalidUTF8.Error())
}

func TestRendererSanitizer(t *testing.T) {
	r := New(WithSanitizer(sanitizerFunc(strings.ToUpper)))
	assert.Equal(t, "<P><STRONG>X</STRONG></P>", string(r.Render("**x**")))
	assert.Equal(t, "<p><strong>x</strong></p>", string(r.Transform("**x**")))
}

type sanitizerFunc func(string) string

func (f sanitizerFunc) Sanitize(s string) string { return f(s) }

func TestEngineByName(t *testing.T) {
	e, err := EngineByName("")
	require.NoError(t, err)
	assert.Equal(t, EngineLite, e.Name())

	e, err = EngineByName("gfm")
	require.NoError(t, err)
	assert.Equal(t, EngineGFM, e.Name())

	_, err = EngineByName("commonmark")
	assert.ErrorIs(t, err, ErrUnknownEngine)
}

func TestGFMEngine(t *testing.T) {
	r := New(WithEngine(GFM), WithSanitizer(NewPolicy()))

	got := string(r.Render("| a |\n|---|\n| b |"))
	assert.Contains(t, got, "<table>")

	got = string(r.Render("<script>alert(1)</script>"))
	assert.NotContains(t, got, "<script>")
}

func TestConcurrentTransform(t *testing.T) {
	done := make(chan string)
	for i := 0; i < 8; i++ {
		go func() {
			done <- string(Transform("- a\n- **b**"))
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, "<ul><li>a</li><li><strong>b</strong></li></ul>", <-done)
	}
}
