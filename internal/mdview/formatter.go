package mdview

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/Paintersrp/mdview/internal/display"
	"github.com/Paintersrp/mdview/internal/location"
)

// Formatter loads the formatter fragment of the record in view into a
// display target.
type Formatter struct {
	loc     Location
	fetcher Fetcher
	doc     Document
	sched   Scheduler
	logger  *slog.Logger

	baseURL     string
	appendMode  bool
	generations map[string]uint64
	onError     func(error)
}

// NewFormatter returns a loader fetching fragments from baseURL followed by
// the record uuid.
func NewFormatter(loc Location, fetcher Fetcher, doc Document, sched Scheduler, baseURL string, logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Formatter{
		loc:         loc,
		fetcher:     fetcher,
		doc:         doc,
		sched:       sched,
		logger:      logger,
		baseURL:     baseURL,
		generations: make(map[string]uint64),
	}
}

// SetBaseURL changes the formatter endpoint for subsequent loads.
func (f *Formatter) SetBaseURL(baseURL string) {
	f.baseURL = baseURL
}

// SetAppend makes loads add to the target instead of replacing its content.
func (f *Formatter) SetAppend(appendMode bool) {
	f.appendMode = appendMode
}

// OnError sets the hook receiving load failures.
func (f *Formatter) OnError(fn func(error)) {
	f.onError = fn
}

// Init loads the fragment for the current location into target, then again
// after every location change until the returned function is called.
func (f *Formatter) Init(target string) func() {
	f.run(target)
	return f.loc.Subscribe(func(location.Change) {
		f.run(target)
	})
}

func (f *Formatter) run(target string) {
	if !f.loc.IsMdView() {
		f.generations[target]++
		f.clear(target)
		return
	}
	uuid := location.UUIDFromPath(f.loc.Path())
	if uuid == "" {
		return
	}
	f.Load(f.baseURL+url.PathEscape(uuid), target)
}

// Load fetches the fragment at target URL u and attaches it under target
// once it arrives. A later Load for the same target supersedes this one.
func (f *Formatter) Load(u, target string) {
	f.generations[target]++
	gen := f.generations[target]
	f.logger.Debug("mdview: load formatter", "url", u, "target", target, "generation", gen)

	f.sched.Go(func(ctx context.Context) func() {
		body, err := f.fetcher.Fetch(ctx, u)
		return func() {
			f.complete(gen, u, target, body, err)
		}
	})
}

func (f *Formatter) complete(gen uint64, u, target, body string, err error) {
	if gen != f.generations[target] {
		f.logger.Debug("mdview: discard stale fragment", "url", u, "target", target)
		return
	}
	if err != nil {
		f.clear(target)
		f.report(fmt.Errorf("load formatter %s: %w", u, err))
		return
	}

	el := display.NewElement(display.TrustedHTML(body))
	if err := f.doc.Attach(target, el, !f.appendMode); err != nil {
		f.report(fmt.Errorf("attach formatter to %s: %w", target, err))
	}
}

// clear drops the previous record's fragment so it is never shown for
// another record. Appended content is kept.
func (f *Formatter) clear(target string) {
	if !f.appendMode {
		f.doc.Clear(target)
	}
}

func (f *Formatter) report(err error) {
	f.logger.Warn("mdview: formatter failed", "error", err)
	if f.onError != nil {
		f.onError(err)
	}
}
