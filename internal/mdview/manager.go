package mdview

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/Paintersrp/mdview/internal/record"
)

// Record is a catalog record prepared for display. The derived fields are
// computed from the Accessor every time the record becomes current.
type Record struct {
	Source     Accessor
	UUID       string
	Links      []record.Link
	Downloads  []record.Link
	Layers     []record.Link
	Contacts   []record.Contact
	Overviews  []record.Thumbnail
	EncodedURL string
}

// ViewState is the record-view state of one browser session.
type ViewState struct {
	Current *Record
	// Index is the position of Current in Records, or -1 when nothing is
	// current.
	Index int
	// History grows by one entry per FeedRecord call. Duplicates are kept.
	History []*Record
	Records []Accessor
}

// Manager owns the ViewState of a session and keeps the location in step
// with it.
type Manager struct {
	loc    Location
	logger *slog.Logger

	state            ViewState
	lastSearchParams url.Values
}

// NewManager returns a manager with empty history and no current record.
func NewManager(loc Location, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		loc:              loc,
		logger:           logger,
		state:            ViewState{Index: -1},
		lastSearchParams: url.Values{},
	}
}

// State returns a snapshot of the view state.
func (m *Manager) State() ViewState {
	s := m.state
	s.History = append([]*Record(nil), m.state.History...)
	s.Records = append([]Accessor(nil), m.state.Records...)
	return s
}

// Current returns the current record, or nil.
func (m *Manager) Current() *Record {
	return m.state.Current
}

// History returns the records fed so far, oldest first.
func (m *Manager) History() []*Record {
	return append([]*Record(nil), m.state.History...)
}

// FeedRecord makes a record current. A nil records reuses the stored record
// set; a nil rec is looked up in the set at index. The record's display
// fields are derived afresh, it is appended to the history and the location
// moves to its uuid.
func (m *Manager) FeedRecord(index int, rec Accessor, records []Accessor) error {
	if records != nil {
		m.state.Records = records
	}
	if rec == nil {
		if index < 0 || index >= len(m.state.Records) {
			return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(m.state.Records))
		}
		rec = m.state.Records[index]
	}

	current := m.derive(rec)
	m.state.Current = current
	m.state.Index = index
	m.state.History = append(m.state.History, current)

	m.logger.Debug("mdview: feed record", "uuid", current.UUID, "index", index, "history", len(m.state.History))
	m.SetLocationUUID(current.UUID)
	return nil
}

// Step feeds the record delta positions away from the current one in the
// record set.
func (m *Manager) Step(delta int) error {
	if m.state.Index < 0 {
		return fmt.Errorf("%w: no current position", ErrIndexOutOfRange)
	}
	return m.FeedRecord(m.state.Index+delta, nil, nil)
}

// Back feeds the record viewed before the current one again. The history
// keeps growing, so repeated calls alternate between the last two records.
func (m *Manager) Back() error {
	n := len(m.state.History)
	if n < 2 {
		return ErrNoHistory
	}
	prev := m.state.History[n-2].Source
	return m.FeedRecord(m.indexOf(prev.UUID()), prev, nil)
}

func (m *Manager) indexOf(uuid string) int {
	for i, rec := range m.state.Records {
		if rec.UUID() == uuid {
			return i
		}
	}
	return -1
}

// OpenView feeds rec at index and moves the location to its uuid. Unlike
// FeedRecord it requires a record.
func (m *Manager) OpenView(index int, rec Accessor, records []Accessor) error {
	if rec == nil {
		return ErrNoRecord
	}
	if index >= 0 {
		if err := m.FeedRecord(index, rec, records); err != nil {
			return err
		}
	}
	m.SetLocationUUID(rec.UUID())
	return nil
}

// SetLocationUUID moves the location to the record view of uuid. Leaving
// search mode saves the search parameters and the address, then clears the
// parameters from the location.
func (m *Manager) SetLocationUUID(uuid string) {
	if m.loc.IsSearch() {
		m.lastSearchParams = m.loc.Params()
		m.loc.SaveLastURL()
		m.loc.RemoveParams()
	}
	m.loc.SetUUID(uuid)
}

// RemoveLocationUUID returns the location to search mode with the parameters
// saved when record view was entered.
func (m *Manager) RemoveLocationUUID() {
	if !m.loc.IsSearch() {
		m.loc.SetSearch(m.LastSearchParams())
	}
}

// LastSearchParams returns a copy of the parameters saved on entering record
// view.
func (m *Manager) LastSearchParams() url.Values {
	out := make(url.Values, len(m.lastSearchParams))
	for k, v := range m.lastSearchParams {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func (m *Manager) derive(rec Accessor) *Record {
	r := &Record{
		Source:     rec,
		UUID:       rec.UUID(),
		Links:      rec.LinksByType("LINK"),
		Downloads:  rec.LinksByType("DOWNLOAD"),
		Layers:     rec.LinksByType("OGC", "kml"),
		Contacts:   rec.Contacts(),
		EncodedURL: encodeURIComponent(m.loc.AbsURL()),
	}
	if thumbs := rec.Thumbnails(); thumbs != nil {
		r.Overviews = thumbs.List
	}
	return r
}

// componentUnescaper undoes the query escaping of characters a URI component
// keeps literal, and writes spaces as %20.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent escapes s for use as a single URI component, leaving
// A-Z a-z 0-9 and -_.!~*'() unescaped.
func encodeURIComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
