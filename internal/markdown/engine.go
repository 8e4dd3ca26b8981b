package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

const (
	EngineLite = "lite"
	EngineGFM  = "gfm"
)

var (
	ErrInvalidUTF8   = errors.New("input is not valid UTF-8")
	ErrUnknownEngine = errors.New("unknown markdown engine")
)

// Engine converts a whole Markdown document to HTML.
type Engine interface {
	Name() string
	Convert(source string) (string, error)
}

// Lite is the restricted dialect: fences, headings, rules, block images,
// quotes, flat lists and single-line paragraphs.
var Lite Engine = liteEngine{}

type liteEngine struct{}

func (liteEngine) Name() string { return EngineLite }

func (liteEngine) Convert(source string) (string, error) {
	if !utf8.ValidString(source) {
		return "", ErrInvalidUTF8
	}
	return parseBlocks(source), nil
}

// GFM renders GitHub Flavored Markdown through goldmark. Raw HTML in the
// source is omitted.
var GFM Engine = &gfmEngine{
	md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	),
}

type gfmEngine struct {
	md goldmark.Markdown
}

func (e *gfmEngine) Name() string { return EngineGFM }

func (e *gfmEngine) Convert(source string) (string, error) {
	var buf bytes.Buffer
	if err := e.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("goldmark convert: %w", err)
	}
	return buf.String(), nil
}

// EngineByName resolves a configured engine name. An empty name selects Lite.
func EngineByName(name string) (Engine, error) {
	switch name {
	case "", EngineLite:
		return Lite, nil
	case EngineGFM:
		return GFM, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}
