package mdview

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Paintersrp/mdview/internal/catalog"
	"github.com/Paintersrp/mdview/internal/location"
)

// Lifecycle loads the record addressed by the location whenever it changes
// and is not already current.
type Lifecycle struct {
	mgr      *Manager
	loc      Location
	searcher Searcher
	sched    Scheduler
	logger   *slog.Logger

	generation uint64
	onError    func(error)
}

// NewLifecycle wires a lifecycle controller. Nothing happens until Init.
func NewLifecycle(mgr *Manager, loc Location, searcher Searcher, sched Scheduler, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{
		mgr:      mgr,
		loc:      loc,
		searcher: searcher,
		sched:    sched,
		logger:   logger,
	}
}

// OnError sets the hook receiving lookup failures.
func (l *Lifecycle) OnError(fn func(error)) {
	l.onError = fn
}

// Init subscribes to location changes. The returned function unsubscribes.
func (l *Lifecycle) Init() func() {
	return l.loc.Subscribe(func(location.Change) {
		l.Sync()
	})
}

// Sync compares the location's uuid with the current record and schedules a
// lookup when they differ. Any lookup still in flight is superseded.
func (l *Lifecycle) Sync() {
	l.generation++
	uuid := l.loc.UUID()
	if uuid == "" {
		return
	}
	if current := l.mgr.Current(); current != nil && current.UUID == uuid {
		return
	}

	gen := l.generation
	q := catalog.Query{UUID: uuid, Fast: "index", ContentType: "json"}
	l.logger.Debug("mdview: lookup record", "uuid", uuid, "generation", gen)

	l.sched.Go(func(ctx context.Context) func() {
		resp, err := l.searcher.Search(ctx, q)
		return func() {
			l.complete(gen, uuid, resp, err)
		}
	})
}

func (l *Lifecycle) complete(gen uint64, uuid string, resp *catalog.SearchResponse, err error) {
	if gen != l.generation {
		l.logger.Debug("mdview: discard stale lookup", "uuid", uuid, "generation", gen, "latest", l.generation)
		return
	}
	if err != nil {
		l.report(fmt.Errorf("lookup record %s: %w", uuid, err))
		return
	}

	var found []Accessor
	if resp != nil {
		for _, md := range resp.Metadata {
			if md != nil {
				found = append(found, md)
			}
		}
	}
	if len(found) != 1 {
		l.report(&LookupMissError{UUID: uuid, Count: len(found)})
		return
	}

	if err := l.mgr.FeedRecord(0, nil, found); err != nil {
		l.report(err)
	}
}

func (l *Lifecycle) report(err error) {
	l.logger.Warn("mdview: record lookup failed", "error", err)
	if l.onError != nil {
		l.onError(err)
	}
}
