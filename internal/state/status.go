package state

import (
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// RootStatus is the shared status line shown under the browser.
type RootStatus struct {
	mu   sync.RWMutex
	line string
}

func (r *RootStatus) Set(line string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.line = line
	r.mu.Unlock()
}

func (r *RootStatus) Value() string {
	if r == nil {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.line
}

// StatusMsg notifies the TUI that the root status line was refreshed.
type StatusMsg struct {
	Line string
}

// StatusCmd recomputes the status line from the catalog, location and view
// state. It reads the view state, so the command is evaluated immediately
// and only the message delivery is deferred.
func (s *State) StatusCmd() tea.Cmd {
	if s == nil {
		return nil
	}

	line := s.statusLine()
	s.RootStatus.Set(line)
	return func() tea.Msg {
		return StatusMsg{Line: line}
	}
}

func (s *State) statusLine() string {
	if s.Location == nil {
		return ""
	}

	parts := []string{fmt.Sprintf("Catalog: %s", s.CatalogName)}
	if s.Location.IsMdView() {
		parts = append(parts, fmt.Sprintf("record %s", s.Location.UUID()))
	} else {
		parts = append(parts, "search")
	}
	if s.Manager != nil {
		if n := len(s.Manager.History()); n > 0 {
			parts = append(parts, fmt.Sprintf("history %d", n))
		}
	}
	if s.Loop != nil {
		if n := s.Loop.Pending(); n > 0 {
			parts = append(parts, fmt.Sprintf("queued %d", n))
		}
	}

	return strings.Join(parts, " · ")
}
