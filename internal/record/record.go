package record

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Link is an outbound reference published by a record, decoded from the
// catalog's pipe separated link descriptor.
type Link struct {
	Name        string
	Description string
	URL         string
	Protocol    string
	ContentType string
	Group       int
	HasGroup    bool
}

// Contact is a responsible party attached to a record.
type Contact struct {
	Role         string
	AppliesTo    string
	Organisation string
	Email        string
}

// Thumbnail describes a single preview image.
type Thumbnail struct {
	URL   string
	Label string
}

// Thumbnails groups the preview images of a record. Small and Big hold the
// first thumbnail and overview respectively.
type Thumbnails struct {
	Small string
	Big   string
	List  []Thumbnail
}

// Metadata is a catalog record as returned by the search endpoint.
type Metadata struct {
	Title            string   `json:"title"`
	DefaultTitle     string   `json:"defaultTitle"`
	Abstract         string   `json:"abstract"`
	RawLinks         []string `json:"link"`
	ResponsibleParty []string `json:"responsibleParty"`
	Images           []string `json:"image"`
	ChangeDate       string   `json:"changeDate"`
	Info             struct {
		UUID string `json:"uuid"`
		ID   string `json:"id"`
	} `json:"geonet:info"`
}

// UnmarshalJSON accepts the catalog's habit of emitting single values where a
// list is expected.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	type plain Metadata
	var raw struct {
		plain
		RawLinks         flexList `json:"link"`
		ResponsibleParty flexList `json:"responsibleParty"`
		Images           flexList `json:"image"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Metadata(raw.plain)
	m.RawLinks = []string(raw.RawLinks)
	m.ResponsibleParty = []string(raw.ResponsibleParty)
	m.Images = []string(raw.Images)
	return nil
}

type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*l = values
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = []string{single}
	return nil
}

// UUID returns the record identifier.
func (m *Metadata) UUID() string {
	if m == nil {
		return ""
	}
	return m.Info.UUID
}

// DisplayTitle returns the best available title for listings.
func (m *Metadata) DisplayTitle() string {
	if m == nil {
		return ""
	}
	if t := strings.TrimSpace(m.Title); t != "" {
		return t
	}
	if t := strings.TrimSpace(m.DefaultTitle); t != "" {
		return t
	}
	return m.UUID()
}

// Changed parses the record change date. Catalogs emit several formats, so
// parsing is lenient.
func (m *Metadata) Changed() (time.Time, bool) {
	if m == nil || strings.TrimSpace(m.ChangeDate) == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(m.ChangeDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// LinksByType returns the links whose protocol matches any of the provided
// types. A type prefixed with '#' must match the protocol exactly; otherwise
// a case-insensitive substring match is used. Without types every link is
// returned.
func (m *Metadata) LinksByType(types ...string) []Link {
	if m == nil {
		return nil
	}
	var out []Link
	for _, raw := range m.RawLinks {
		link := parseLink(raw)
		if len(types) == 0 {
			out = append(out, link)
			continue
		}
		for _, t := range types {
			if matchesProtocol(link.Protocol, t) {
				out = append(out, link)
				break
			}
		}
	}
	return out
}

func matchesProtocol(protocol, t string) bool {
	if strings.HasPrefix(t, "#") {
		return protocol == t[1:]
	}
	return strings.Contains(strings.ToLower(protocol), strings.ToLower(t))
}

func parseLink(raw string) Link {
	parts := strings.Split(raw, "|")
	link := Link{
		Name:        field(parts, 0),
		Description: field(parts, 1),
		URL:         field(parts, 2),
		Protocol:    field(parts, 3),
		ContentType: field(parts, 4),
	}
	if g := field(parts, 5); g != "" {
		if n, err := strconv.Atoi(g); err == nil {
			link.Group = n
			link.HasGroup = true
		}
	}
	return link
}

// Contacts returns the responsible parties of the record.
func (m *Metadata) Contacts() []Contact {
	if m == nil {
		return nil
	}
	out := make([]Contact, 0, len(m.ResponsibleParty))
	for _, raw := range m.ResponsibleParty {
		parts := strings.Split(raw, "|")
		out = append(out, Contact{
			Role:         field(parts, 0),
			AppliesTo:    field(parts, 1),
			Organisation: field(parts, 2),
			Email:        field(parts, 4),
		})
	}
	return out
}

// Thumbnails returns the preview images of the record, or nil when it has
// none.
func (m *Metadata) Thumbnails() *Thumbnails {
	if m == nil || len(m.Images) == 0 {
		return nil
	}
	thumbs := &Thumbnails{}
	for _, raw := range m.Images {
		parts := strings.Split(raw, "|")
		kind, url := field(parts, 0), field(parts, 1)
		if url == "" {
			continue
		}
		switch kind {
		case "thumbnail":
			if thumbs.Small == "" {
				thumbs.Small = url
			}
		case "overview":
			if thumbs.Big == "" {
				thumbs.Big = url
			}
		}
		thumbs.List = append(thumbs.List, Thumbnail{URL: url, Label: kind})
	}
	if len(thumbs.List) == 0 {
		return nil
	}
	return thumbs
}

func field(parts []string, i int) string {
	if i < len(parts) {
		return strings.TrimSpace(parts[i])
	}
	return ""
}
