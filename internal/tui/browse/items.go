package browse

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/muesli/reflow/truncate"

	"github.com/Paintersrp/mdview/internal/mdview"
	"github.com/Paintersrp/mdview/internal/record"
)

const (
	dateLayout     = "2006-01-02"
	abstractLength = 120
)

// recordItem is one search result. index is its position in the result set.
type recordItem struct {
	md    *record.Metadata
	index int
	width int
}

func (i recordItem) Title() string {
	return clip(i.md.DisplayTitle(), i.width)
}

func (i recordItem) Description() string {
	var parts []string
	if changed, ok := i.md.Changed(); ok {
		parts = append(parts, changed.Format(dateLayout))
	}
	if abstract := strings.Join(strings.Fields(i.md.Abstract), " "); abstract != "" {
		parts = append(parts, abstract)
	}
	if len(parts) == 0 {
		parts = append(parts, i.md.UUID())
	}
	width := i.width
	if width <= 0 || width > abstractLength {
		width = abstractLength
	}
	return clip(strings.Join(parts, " · "), width)
}

func (i recordItem) FilterValue() string {
	return i.md.DisplayTitle() + " " + i.md.UUID()
}

func clip(s string, width int) string {
	if width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "…")
}

func toItems(records []*record.Metadata, width int) []list.Item {
	items := make([]list.Item, len(records))
	for i, md := range records {
		items[i] = recordItem{md: md, index: i, width: width}
	}
	return items
}

func toAccessors(records []*record.Metadata) []mdview.Accessor {
	out := make([]mdview.Accessor, len(records))
	for i, md := range records {
		out[i] = md
	}
	return out
}
