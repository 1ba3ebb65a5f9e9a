package mdview

import (
	"errors"
	"net/url"
	"testing"

	"github.com/Paintersrp/mdview/internal/location"
	"github.com/Paintersrp/mdview/internal/record"
)

func accessors(records ...*fakeRecord) []Accessor {
	out := make([]Accessor, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}

func TestFeedRecordEntersRecordViewAndSavesSearch(t *testing.T) {
	loc := location.NewRouter("https://catalog.example.org/#")
	loc.SetSearch(url.Values{"q": {"water"}})
	mgr := NewManager(loc, nil)

	a, b, x := newFakeRecord("a"), newFakeRecord("b"), newFakeRecord("x")
	if err := mgr.FeedRecord(2, x, accessors(a, b, x)); err != nil {
		t.Fatalf("FeedRecord returned error: %v", err)
	}

	if got := loc.UUID(); got != "x" {
		t.Fatalf("expected location uuid x, got %q", got)
	}
	if got := mgr.LastSearchParams(); got.Get("q") != "water" || len(got) != 1 {
		t.Fatalf("expected saved params q=water, got %v", got)
	}
	if got := loc.Params(); len(got) != 0 {
		t.Fatalf("expected search params cleared from location, got %v", got)
	}
	if got := loc.LastURL(); got != "/search?q=water" {
		t.Fatalf("expected saved url /search?q=water, got %q", got)
	}

	mgr.RemoveLocationUUID()
	if !loc.IsSearch() {
		t.Fatalf("expected search mode after RemoveLocationUUID")
	}
	if got := loc.Params().Get("q"); got != "water" {
		t.Fatalf("expected restored q=water, got %q", got)
	}
}

func TestFeedRecordDerivesDisplayFields(t *testing.T) {
	loc := location.NewRouter("https://catalog.example.org/#")
	loc.SetSearch(url.Values{"q": {"water"}})
	mgr := NewManager(loc, nil)

	rec := newFakeRecord("abc")
	rec.thumbs = &record.Thumbnails{List: []record.Thumbnail{{URL: "https://example.org/t.png", Label: "thumbnail"}}}
	if err := mgr.FeedRecord(0, rec, accessors(rec)); err != nil {
		t.Fatalf("FeedRecord returned error: %v", err)
	}

	current := mgr.Current()
	if current == nil {
		t.Fatalf("expected a current record")
	}
	if len(current.Links) != 1 || len(current.Downloads) != 1 || len(current.Layers) != 1 {
		t.Fatalf("unexpected link categories %+v", current)
	}
	if len(current.Contacts) != 1 {
		t.Fatalf("expected contacts, got %+v", current.Contacts)
	}
	if len(current.Overviews) != 1 {
		t.Fatalf("expected overviews, got %+v", current.Overviews)
	}
	want := "https%3A%2F%2Fcatalog.example.org%2F%23%2Fsearch%3Fq%3Dwater"
	if current.EncodedURL != want {
		t.Fatalf("expected encoded url %q, got %q", want, current.EncodedURL)
	}
}

func TestFeedRecordLeavesOverviewsNilWithoutThumbnails(t *testing.T) {
	mgr := NewManager(location.NewRouter(""), nil)
	rec := newFakeRecord("abc")
	if err := mgr.FeedRecord(0, rec, nil); err != nil {
		t.Fatalf("FeedRecord returned error: %v", err)
	}
	if mgr.Current().Overviews != nil {
		t.Fatalf("expected nil overviews, got %+v", mgr.Current().Overviews)
	}
}

func TestFeedRecordRecomputesDerivedFields(t *testing.T) {
	mgr := NewManager(location.NewRouter(""), nil)
	rec := newFakeRecord("abc")

	if err := mgr.FeedRecord(0, rec, accessors(rec)); err != nil {
		t.Fatalf("FeedRecord returned error: %v", err)
	}
	firstCalls := rec.calls
	firstRecord := mgr.Current()

	rec.links["LINK"] = append(rec.links["LINK"], record.Link{Name: "new", URL: "https://example.org/new"})
	if err := mgr.FeedRecord(0, rec, nil); err != nil {
		t.Fatalf("FeedRecord returned error: %v", err)
	}

	if rec.calls != 2*firstCalls {
		t.Fatalf("expected accessor to be consulted again, got %d calls after %d", rec.calls, firstCalls)
	}
	if mgr.Current() == firstRecord {
		t.Fatalf("expected a fresh record value")
	}
	if got := len(mgr.Current().Links); got != 2 {
		t.Fatalf("expected recomputed links, got %d", got)
	}
}

func TestHistoryGrowsWithEveryFeed(t *testing.T) {
	mgr := NewManager(location.NewRouter(""), nil)
	a, b := newFakeRecord("a"), newFakeRecord("b")
	set := accessors(a, b)

	feeds := []int{0, 1, 0, 0}
	for i, index := range feeds {
		records := set
		if i > 0 {
			records = nil
		}
		if err := mgr.FeedRecord(index, nil, records); err != nil {
			t.Fatalf("feed %d returned error: %v", i, err)
		}
	}

	history := mgr.History()
	if len(history) != len(feeds) {
		t.Fatalf("expected history of %d, got %d", len(feeds), len(history))
	}
	if history[2].UUID != "a" || history[3].UUID != "a" {
		t.Fatalf("expected duplicates to be kept, got %s and %s", history[2].UUID, history[3].UUID)
	}
	state := mgr.State()
	if state.Index != 0 || state.Current.UUID != "a" || len(state.Records) != 2 {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestFeedRecordLooksUpRecordSet(t *testing.T) {
	loc := location.NewRouter("")
	mgr := NewManager(loc, nil)
	a, b := newFakeRecord("a"), newFakeRecord("b")

	if err := mgr.FeedRecord(1, nil, accessors(a, b)); err != nil {
		t.Fatalf("FeedRecord returned error: %v", err)
	}
	if got := loc.UUID(); got != "b" {
		t.Fatalf("expected uuid b, got %q", got)
	}

	err := mgr.FeedRecord(5, nil, nil)
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if len(mgr.History()) != 1 {
		t.Fatalf("expected failed feed to leave history unchanged")
	}
}

func TestNewManagerStartsEmpty(t *testing.T) {
	mgr := NewManager(location.NewRouter(""), nil)
	state := mgr.State()
	if state.Current != nil || state.Index != -1 || len(state.History) != 0 {
		t.Fatalf("unexpected initial state %+v", state)
	}
}

func TestOpenViewAcceptsIndexZero(t *testing.T) {
	loc := location.NewRouter("")
	mgr := NewManager(loc, nil)
	rec := newFakeRecord("first")

	if err := mgr.OpenView(0, rec, accessors(rec)); err != nil {
		t.Fatalf("OpenView returned error: %v", err)
	}
	if mgr.Current() == nil || mgr.Current().UUID != "first" {
		t.Fatalf("expected index 0 to open the record")
	}
	if got := loc.UUID(); got != "first" {
		t.Fatalf("expected location uuid first, got %q", got)
	}
}

func TestOpenViewWithoutIndexOnlyMovesLocation(t *testing.T) {
	loc := location.NewRouter("")
	mgr := NewManager(loc, nil)

	if err := mgr.OpenView(-1, newFakeRecord("abc"), nil); err != nil {
		t.Fatalf("OpenView returned error: %v", err)
	}
	if mgr.Current() != nil {
		t.Fatalf("expected no current record without an index")
	}
	if got := loc.UUID(); got != "abc" {
		t.Fatalf("expected location uuid abc, got %q", got)
	}

	if err := mgr.OpenView(0, nil, nil); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}
}

func TestSetLocationUUIDOnlySavesFromSearchMode(t *testing.T) {
	loc := location.NewRouter("")
	loc.SetSearch(url.Values{"q": {"water"}})
	mgr := NewManager(loc, nil)

	mgr.SetLocationUUID("a")
	loc.SetSearch(url.Values{"q": {"ignored"}})
	loc.SetUUID("b")
	mgr.SetLocationUUID("c")

	if got := mgr.LastSearchParams().Get("q"); got != "water" {
		t.Fatalf("expected params saved from search mode only, got %q", got)
	}
}

func TestRemoveLocationUUIDInSearchModeIsNoop(t *testing.T) {
	loc := location.NewRouter("")
	loc.SetSearch(url.Values{"q": {"lakes"}})
	mgr := NewManager(loc, nil)

	mgr.RemoveLocationUUID()
	if got := loc.Params().Get("q"); got != "lakes" {
		t.Fatalf("expected params untouched in search mode, got %q", got)
	}
}

func TestStepMovesThroughRecordSet(t *testing.T) {
	loc := location.NewRouter("")
	mgr := NewManager(loc, nil)
	a, b, c := newFakeRecord("a"), newFakeRecord("b"), newFakeRecord("c")

	if err := mgr.Step(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange without a current record, got %v", err)
	}
	if err := mgr.FeedRecord(1, nil, accessors(a, b, c)); err != nil {
		t.Fatalf("FeedRecord returned error: %v", err)
	}
	if err := mgr.Step(1); err != nil {
		t.Fatalf("Step returned error: %v", err)
	}
	if got := loc.UUID(); got != "c" {
		t.Fatalf("expected c after stepping forward, got %q", got)
	}
	if err := mgr.Step(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange past the end, got %v", err)
	}
	if err := mgr.Step(-2); err != nil {
		t.Fatalf("Step returned error: %v", err)
	}
	if got := mgr.State().Index; got != 0 {
		t.Fatalf("expected index 0, got %d", got)
	}
}

func TestBackFeedsPreviousRecord(t *testing.T) {
	loc := location.NewRouter("")
	mgr := NewManager(loc, nil)
	a, b := newFakeRecord("a"), newFakeRecord("b")

	if err := mgr.Back(); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}
	if err := mgr.FeedRecord(0, nil, accessors(a, b)); err != nil {
		t.Fatalf("FeedRecord returned error: %v", err)
	}
	if err := mgr.FeedRecord(1, nil, nil); err != nil {
		t.Fatalf("FeedRecord returned error: %v", err)
	}

	if err := mgr.Back(); err != nil {
		t.Fatalf("Back returned error: %v", err)
	}
	state := mgr.State()
	if state.Current.UUID != "a" || state.Index != 0 || len(state.History) != 3 {
		t.Fatalf("unexpected state after Back %+v", state)
	}
	if got := loc.UUID(); got != "a" {
		t.Fatalf("expected location uuid a, got %q", got)
	}
}

func TestEncodeURIComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "lake water", want: "lake%20water"},
		{in: "a+b", want: "a%2Bb"},
		{in: "keep-_.!~*'()", want: "keep-_.!~*'()"},
		{in: "/search?any=x&from=1", want: "%2Fsearch%3Fany%3Dx%26from%3D1"},
		{in: "é", want: "%C3%A9"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := encodeURIComponent(tt.in); got != tt.want {
				t.Fatalf("encodeURIComponent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
