package mdview

import (
	"context"
	"errors"
	"sync"

	"github.com/Paintersrp/mdview/internal/catalog"
	"github.com/Paintersrp/mdview/internal/display"
	"github.com/Paintersrp/mdview/internal/loop"
	"github.com/Paintersrp/mdview/internal/record"
)

// fakeRecord counts accessor calls so tests can tell derived fields were
// recomputed.
type fakeRecord struct {
	uuid   string
	links  map[string][]record.Link
	thumbs *record.Thumbnails
	calls  int
}

func newFakeRecord(uuid string) *fakeRecord {
	return &fakeRecord{
		uuid: uuid,
		links: map[string][]record.Link{
			"LINK":     {{Name: "site", URL: "https://example.org/" + uuid, Protocol: "WWW:LINK"}},
			"DOWNLOAD": {{Name: "zip", URL: "https://example.org/" + uuid + ".zip", Protocol: "WWW:DOWNLOAD"}},
			"OGC":      {{Name: "wms", URL: "https://example.org/wms", Protocol: "OGC:WMS"}},
		},
	}
}

func (r *fakeRecord) UUID() string { return r.uuid }

func (r *fakeRecord) LinksByType(types ...string) []record.Link {
	r.calls++
	var out []record.Link
	for _, t := range types {
		out = append(out, r.links[t]...)
	}
	return out
}

func (r *fakeRecord) Contacts() []record.Contact {
	r.calls++
	return []record.Contact{{Role: "author", Organisation: "Org " + r.uuid}}
}

func (r *fakeRecord) Thumbnails() *record.Thumbnails {
	r.calls++
	return r.thumbs
}

type fakeSearcher struct {
	mu      sync.Mutex
	queries []catalog.Query
	results map[string][]*record.Metadata
	err     error
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{results: make(map[string][]*record.Metadata)}
}

func (s *fakeSearcher) add(uuid string, count int) {
	for i := 0; i < count; i++ {
		md := &record.Metadata{Title: "Record " + uuid}
		md.Info.UUID = uuid
		s.results[uuid] = append(s.results[uuid], md)
	}
}

func (s *fakeSearcher) Search(ctx context.Context, q catalog.Query) (*catalog.SearchResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if s.err != nil {
		return nil, s.err
	}
	return &catalog.SearchResponse{Metadata: s.results[q.UUID]}, nil
}

func (s *fakeSearcher) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

type fakeFetcher struct {
	mu     sync.Mutex
	urls   []string
	bodies map[string]string
}

var errFetch = errors.New("connection refused")

func (f *fakeFetcher) Fetch(ctx context.Context, u string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, u)
	body, ok := f.bodies[u]
	if !ok {
		return "", errFetch
	}
	return body, nil
}

// manualScheduler holds tasks until the test runs them, so completion order
// can be controlled.
type manualScheduler struct {
	tasks []loop.Task
}

func (s *manualScheduler) Go(task loop.Task) {
	s.tasks = append(s.tasks, task)
}

// run executes every queued task and returns their completions without
// applying them.
func (s *manualScheduler) run() []func() {
	tasks := s.tasks
	s.tasks = nil
	out := make([]func(), 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task(context.Background()))
	}
	return out
}

func (s *manualScheduler) runAll() {
	for len(s.tasks) > 0 {
		for _, apply := range s.run() {
			if apply != nil {
				apply()
			}
		}
	}
}

type plainCompiler struct{}

func (plainCompiler) Compile(fragment display.TrustedHTML, width int) (string, error) {
	return string(fragment), nil
}
