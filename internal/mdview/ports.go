package mdview

import (
	"context"
	"net/url"

	"github.com/Paintersrp/mdview/internal/catalog"
	"github.com/Paintersrp/mdview/internal/display"
	"github.com/Paintersrp/mdview/internal/location"
	"github.com/Paintersrp/mdview/internal/loop"
	"github.com/Paintersrp/mdview/internal/record"
)

// Accessor exposes the fields of a catalog record used to derive its display
// state.
type Accessor interface {
	UUID() string
	LinksByType(types ...string) []record.Link
	Contacts() []record.Contact
	Thumbnails() *record.Thumbnails
}

// Location is the address state of the browser: a path with an optional
// record uuid and a bag of search parameters.
type Location interface {
	UUID() string
	SetUUID(uuid string)
	IsSearch() bool
	IsMdView() bool
	Path() string
	Params() url.Values
	SetSearch(params url.Values)
	RemoveParams()
	SaveLastURL()
	AbsURL() string
	Subscribe(fn func(location.Change)) (unsubscribe func())
}

// Searcher queries the catalog.
type Searcher interface {
	Search(ctx context.Context, q catalog.Query) (*catalog.SearchResponse, error)
}

// Fetcher retrieves a formatter fragment.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Document receives rendered formatter elements under named targets.
type Document interface {
	Attach(target string, el *display.Element, replace bool) error
	Clear(target string)
}

// Scheduler runs tasks asynchronously and applies their completions on the
// owning event loop.
type Scheduler interface {
	Go(task loop.Task)
}
