package markdown

import (
	"fmt"
	"html/template"
	"log/slog"
)

type Renderer struct {
	engine    Engine
	sanitizer Sanitizer
	logger    *slog.Logger
}

type Option func(*Renderer)

func WithEngine(e Engine) Option {
	return func(r *Renderer) { r.engine = e }
}

// WithSanitizer makes Render pass converter output through s.
func WithSanitizer(s Sanitizer) Option {
	return func(r *Renderer) { r.sanitizer = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

func New(opts ...Option) *Renderer {
	r := &Renderer{engine: Lite}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) Engine() Engine {
	return r.engine
}

func (r *Renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// Transform converts value with the configured engine. If conversion fails
// for any reason, including a panic, the whole document is returned escaped
// instead and the failure is only logged.
func (r *Renderer) Transform(value string) template.HTML {
	if value == "" {
		return ""
	}

	out, err := r.convert(value)
	if err != nil {
		r.log().Error("error parsing markdown", "engine", r.engine.Name(), "error", err)
		return template.HTML(Escape(value))
	}
	return template.HTML(out)
}

func (r *Renderer) convert(value string) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic during conversion: %v", p)
		}
	}()
	return r.engine.Convert(value)
}

// Render is Transform followed by the sanitizer, if one is configured.
func (r *Renderer) Render(source string) template.HTML {
	out := r.Transform(source)
	if r.sanitizer == nil || out == "" {
		return out
	}
	return template.HTML(r.sanitizer.Sanitize(string(out)))
}

var (
	plain         = New()
	defaultPolicy = NewPolicy()
	sanitized     = New(WithSanitizer(defaultPolicy))
)

// Transform converts value with the lite engine and no sanitizer.
func Transform(value string) template.HTML {
	return plain.Transform(value)
}

// Render converts markdown source to sanitized HTML.
func Render(source string) template.HTML {
	return sanitized.Render(source)
}
