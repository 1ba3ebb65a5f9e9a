package display

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// MetadataDisplay tags elements that show a formatter fragment.
const MetadataDisplay = "metadata-display"

// ErrNoTarget is returned when attaching to a target that was never mounted.
var ErrNoTarget = errors.New("display target not mounted")

// TrustedHTML is markup accepted as-is from the configured formatter
// endpoint. It is never sanitized.
type TrustedHTML string

// Element is a display container attached under a target.
type Element struct {
	Kind     string
	Fragment TrustedHTML
	Rendered string
}

// NewElement returns a metadata display element for fragment.
func NewElement(fragment TrustedHTML) *Element {
	return &Element{Kind: MetadataDisplay, Fragment: fragment}
}

// Compiler binds a fragment to a target, producing its terminal form.
type Compiler interface {
	Compile(fragment TrustedHTML, width int) (string, error)
}

type target struct {
	width    int
	elements []*Element
}

// Document is a set of named targets, each holding the elements attached to
// it. It plays the part of the page the formatter view is loaded into.
type Document struct {
	mu       sync.Mutex
	compiler Compiler
	targets  map[string]*target
	version  int
}

// NewDocument returns an empty document compiling elements with c.
func NewDocument(c Compiler) *Document {
	return &Document{
		compiler: c,
		targets:  make(map[string]*target),
	}
}

// Mount registers a target of the given width. Mounting an existing target
// only updates its width.
func (d *Document) Mount(name string, width int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.targets[name]; ok {
		t.width = width
		return
	}
	d.targets[name] = &target{width: width}
}

// Attach adds el under the named target and compiles it against the
// target's width. With replace set, previously attached elements are
// dropped first.
func (d *Document) Attach(name string, el *Element, replace bool) error {
	if el == nil {
		return errors.New("display: nil element")
	}

	d.mu.Lock()
	t, ok := d.targets[name]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNoTarget, name)
	}
	width := t.width
	d.mu.Unlock()

	if err := d.compile(el, width); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if replace {
		t.elements = nil
	}
	t.elements = append(t.elements, el)
	d.version++
	return nil
}

// Resize changes a target's width and recompiles its elements.
func (d *Document) Resize(name string, width int) error {
	d.mu.Lock()
	t, ok := d.targets[name]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNoTarget, name)
	}
	if t.width == width {
		d.mu.Unlock()
		return nil
	}
	t.width = width
	elements := append([]*Element(nil), t.elements...)
	d.mu.Unlock()

	var errs []error
	for _, el := range elements {
		if err := d.compile(el, width); err != nil {
			errs = append(errs, err)
		}
	}

	d.mu.Lock()
	d.version++
	d.mu.Unlock()
	return errors.Join(errs...)
}

// Clear drops every element under the named target.
func (d *Document) Clear(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.targets[name]; ok && len(t.elements) > 0 {
		t.elements = nil
		d.version++
	}
}

// Elements returns the elements attached under the named target.
func (d *Document) Elements(name string) []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.targets[name]
	if !ok {
		return nil
	}
	return append([]*Element(nil), t.elements...)
}

// Content joins the rendered output of the target's elements.
func (d *Document) Content(name string) string {
	elements := d.Elements(name)
	parts := make([]string, 0, len(elements))
	for _, el := range elements {
		parts = append(parts, el.Rendered)
	}
	return strings.Join(parts, "\n")
}

// Version increases whenever any target's content changes.
func (d *Document) Version() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

func (d *Document) compile(el *Element, width int) error {
	if d.compiler == nil {
		el.Rendered = string(el.Fragment)
		return nil
	}
	rendered, err := d.compiler.Compile(el.Fragment, width)
	if err != nil {
		return fmt.Errorf("compile %s element: %w", el.Kind, err)
	}
	el.Rendered = rendered
	return nil
}
