package display

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/Paintersrp/mdview/internal/cache"
)

const defaultWidth = 80

// Renderer compiles formatter fragments for the terminal: the HTML is turned
// into markdown and rendered with glamour. Rendered output is cached by
// fragment digest and width.
type Renderer struct {
	style     string
	converter *converter.Converter
	rendered  *cache.LRU[string, string]
}

// NewRenderer returns a renderer using the named glamour style. An empty
// style picks dark or light from the terminal background.
func NewRenderer(style string, cacheSize int) *Renderer {
	if strings.TrimSpace(style) == "" {
		style = DefaultStyle()
	}
	return &Renderer{
		style: style,
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		rendered: cache.NewLRU[string, string](cacheSize),
	}
}

// DefaultStyle returns the glamour style matching the terminal background.
func DefaultStyle() string {
	if termenv.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// Markdown converts fragment to markdown.
func (r *Renderer) Markdown(fragment TrustedHTML) (string, error) {
	md, err := r.converter.ConvertString(string(fragment))
	if err != nil {
		return "", fmt.Errorf("convert fragment: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// Compile implements Compiler.
func (r *Renderer) Compile(fragment TrustedHTML, width int) (string, error) {
	if width <= 0 {
		width = defaultWidth
	}
	key := fmt.Sprintf("%s:%d:%x", r.style, width, sha256.Sum256([]byte(fragment)))
	if out, ok := r.rendered.Get(key); ok {
		return out, nil
	}

	md, err := r.Markdown(fragment)
	if err != nil {
		return "", err
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := tr.Render(md)
	if err != nil {
		return "", fmt.Errorf("render fragment: %w", err)
	}

	r.rendered.Put(key, out)
	return out, nil
}
