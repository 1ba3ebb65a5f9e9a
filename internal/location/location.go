package location

import (
	"net/url"
	"strings"
	"sync"
)

const (
	// SearchPath is the path of the search listing.
	SearchPath = "/search"
	// MdViewPrefix prefixes record-view paths, followed by the record uuid.
	MdViewPrefix = "/metadata/"
)

// Change is delivered to subscribers after every navigation.
type Change struct {
	Path   string
	Params url.Values
	AbsURL string
}

type subscriber struct {
	id int
	fn func(Change)
}

// Router holds the address state of the browser. The search parameters are
// the query part of the address; the path selects search mode or record-view
// mode.
//
// Router is meant to be driven from a single event loop. The mutex only
// guards against readers on other goroutines, and subscribers are always
// invoked without it held.
type Router struct {
	mu      sync.Mutex
	base    string
	path    string
	params  url.Values
	lastURL string
	subs    []subscriber
	nextID  int
}

// NewRouter returns a router in search mode. base is the address prefix
// used by AbsURL, for example "https://catalog.example.org/srv/eng/catalog.search#".
func NewRouter(base string) *Router {
	return &Router{
		base:   base,
		path:   SearchPath,
		params: url.Values{},
	}
}

// Subscribe registers fn to be called after every navigation. The returned
// function removes the subscription; calling it more than once is harmless.
func (r *Router) Subscribe(fn func(Change)) func() {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subs = append(r.subs, subscriber{id: id, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, s := range r.subs {
				if s.id == id {
					r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Subscribers reports the number of active subscriptions.
func (r *Router) Subscribers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Path returns the current path.
func (r *Router) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Params returns a copy of the current search parameters.
func (r *Router) Params() url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneValues(r.params)
}

// IsSearch reports whether the current path is the search listing.
func (r *Router) IsSearch() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return isSearchPath(r.path)
}

// IsMdView reports whether the current path shows a single record.
func (r *Router) IsMdView() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return UUIDFromPath(r.path) != ""
}

// UUID returns the record uuid encoded in the path, or "" in search mode.
func (r *Router) UUID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return UUIDFromPath(r.path)
}

// SetUUID moves the location to the record-view path of uuid. Search
// parameters are left untouched.
func (r *Router) SetUUID(uuid string) {
	r.update(func() {
		r.path = MdViewPrefix + url.PathEscape(uuid)
	})
}

// SetSearch moves the location to the search path with params.
func (r *Router) SetSearch(params url.Values) {
	r.update(func() {
		r.path = SearchPath
		r.params = cloneValues(params)
	})
}

// RemoveParams clears the search parameters.
func (r *Router) RemoveParams() {
	r.update(func() {
		r.params = url.Values{}
	})
}

// SaveLastURL remembers the current address for RestoreLastURL.
func (r *Router) SaveLastURL() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastURL = r.relativeLocked()
}

// LastURL returns the address saved by SaveLastURL.
func (r *Router) LastURL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastURL
}

// RestoreLastURL navigates back to the address saved by SaveLastURL. It
// reports false when nothing was saved.
func (r *Router) RestoreLastURL() bool {
	last := r.LastURL()
	if last == "" {
		return false
	}
	r.Navigate(last)
	return true
}

// Navigate replaces the whole address with raw, a path with an optional
// query, the way typing into the address bar does.
func (r *Router) Navigate(raw string) {
	path, query, _ := strings.Cut(strings.TrimSpace(raw), "?")
	params, err := url.ParseQuery(query)
	if err != nil {
		params = url.Values{}
	}
	if path == "" {
		path = SearchPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	r.update(func() {
		r.path = path
		r.params = params
	})
}

// AbsURL returns the full address, base included.
func (r *Router) AbsURL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.base + r.relativeLocked()
}

func (r *Router) relativeLocked() string {
	if len(r.params) == 0 {
		return r.path
	}
	return r.path + "?" + r.params.Encode()
}

// update applies mutate and notifies subscribers when the address changed.
// Setting the address to its current value is not a navigation.
func (r *Router) update(mutate func()) {
	r.mu.Lock()
	before := r.relativeLocked()
	mutate()
	after := r.relativeLocked()
	if before == after {
		r.mu.Unlock()
		return
	}
	change := Change{
		Path:   r.path,
		Params: cloneValues(r.params),
		AbsURL: r.base + after,
	}
	subs := append([]subscriber(nil), r.subs...)
	r.mu.Unlock()

	for _, s := range subs {
		s.fn(change)
	}
}

// UUIDFromPath extracts the record uuid from a record-view path. It returns
// "" for any other path.
func UUIDFromPath(path string) string {
	if !strings.HasPrefix(path, MdViewPrefix) {
		return ""
	}
	rest := strings.Trim(strings.TrimPrefix(path, MdViewPrefix), "/")
	if rest == "" {
		return ""
	}
	if i := strings.LastIndex(rest, "/"); i >= 0 {
		rest = rest[i+1:]
	}
	if unescaped, err := url.PathUnescape(rest); err == nil {
		return unescaped
	}
	return rest
}

func isSearchPath(path string) bool {
	switch strings.TrimRight(path, "/") {
	case "", SearchPath:
		return true
	}
	return false
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		out[k] = append([]string(nil), v...)
	}
	return out
}
