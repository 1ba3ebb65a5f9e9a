// Package browse is the interactive catalog browser: a result list in search
// mode and the formatter view of a record in record view mode.
package browse

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Paintersrp/mdview/internal/catalog"
	"github.com/Paintersrp/mdview/internal/constants"
	"github.com/Paintersrp/mdview/internal/loop"
	"github.com/Paintersrp/mdview/internal/mdview"
	"github.com/Paintersrp/mdview/internal/record"
	"github.com/Paintersrp/mdview/internal/state"
)

// searchParam is the location parameter holding the free text query.
const searchParam = "any"

type Model struct {
	state  *state.State
	list   list.Model
	input  textinput.Model
	detail viewport.Model
	help   help.Model
	keys   *keyMap

	results   []*record.Metadata
	total     int
	searchGen uint64

	shownVersion int
	shownRecord  *mdview.Record

	status string
	failed bool
	typing bool
	width  int
	height int

	copy func(string) error
}

func NewModel(s *state.State) *Model {
	keys := newKeyMap()

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedItemStyle
	delegate.Styles.SelectedDesc = selectedItemStyle

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Catalog: " + s.CatalogName
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.open, keys.search}
	}

	input := textinput.New()
	input.Placeholder = "search the catalog"
	input.Prompt = "/ "
	input.SetValue(s.Location.Params().Get(searchParam))

	m := &Model{
		state:        s,
		list:         l,
		input:        input,
		detail:       viewport.New(0, 0),
		help:         help.New(),
		keys:         keys,
		shownVersion: -1,
		copy:         clipboard.WriteAll,
	}
	s.OnError(m.setError)

	return m
}

func (m *Model) Init() tea.Cmd {
	if m.state.Location.IsSearch() && m.state.Location.Params().Get(searchParam) != "" {
		m.search()
	}

	return tea.Batch(
		m.state.Loop.Cmd(),
		m.state.Watcher.Start(),
		m.state.StatusCmd(),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case loop.CompletedMsg:
		m.state.Loop.Apply(msg)

	case state.ConfigChangedMsg:
		if err := m.state.Reload(); err != nil {
			m.setError(fmt.Errorf("reload config: %w", err))
		} else {
			m.setStatus("Config reloaded")
		}
		cmds = append(cmds, m.state.Watcher.Start())

	case state.ConfigWatcherErrMsg:
		m.setError(msg.Err)
		cmds = append(cmds, m.state.Watcher.Start())

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.forceQuit) {
			return m, tea.Quit
		}
		switch {
		case m.typing:
			cmds = append(cmds, m.handleInputUpdate(msg))
		case m.state.Location.IsMdView():
			cmds = append(cmds, m.handleRecordUpdate(msg))
		default:
			cmd, quit := m.handleSearchUpdate(msg)
			if quit {
				return m, tea.Quit
			}
			cmds = append(cmds, cmd)
		}

	default:
		if m.typing {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.syncDetail()
	cmds = append(cmds, m.state.Loop.Cmd(), m.state.StatusCmd())
	return m, tea.Batch(cmds...)
}

func (m *Model) handleInputUpdate(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.submitSearch(m.input.Value())
		m.input.Blur()
		m.typing = false
		return nil
	case tea.KeyEsc:
		m.input.Blur()
		m.typing = false
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleSearchUpdate(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return nil, true
	case key.Matches(msg, m.keys.search):
		m.typing = true
		return m.input.Focus(), false
	case key.Matches(msg, m.keys.open):
		m.openSelected()
		return nil, false
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd, false
}

func (m *Model) handleRecordUpdate(msg tea.KeyMsg) tea.Cmd {
	mgr := m.state.Manager

	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.back):
		mgr.RemoveLocationUUID()
		if len(m.results) == 0 {
			m.search()
		}
	case key.Matches(msg, m.keys.restore):
		m.restoreLastURL()
	case key.Matches(msg, m.keys.next):
		m.step(1)
	case key.Matches(msg, m.keys.prev):
		m.step(-1)
	case key.Matches(msg, m.keys.history):
		if err := mgr.Back(); err != nil {
			m.setError(err)
		}
	case key.Matches(msg, m.keys.yank):
		u := m.state.Location.AbsURL()
		if err := m.copy(u); err != nil {
			m.setError(fmt.Errorf("copy url: %w", err))
		} else {
			m.setStatus("Copied " + u)
		}
	default:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) step(delta int) {
	err := m.state.Manager.Step(delta)
	if errors.Is(err, mdview.ErrIndexOutOfRange) {
		m.setStatus("No more records in this direction")
		return
	}
	if err != nil {
		m.setError(err)
	}
}

// restoreLastURL returns to the address saved when the record view was
// entered and searches it again.
func (m *Model) restoreLastURL() {
	if !m.state.Location.RestoreLastURL() {
		m.setStatus("No saved address")
		return
	}
	if m.state.Location.IsSearch() {
		m.input.SetValue(m.state.Location.Params().Get(searchParam))
		m.search()
	}
}

func (m *Model) openSelected() {
	item, ok := m.list.SelectedItem().(recordItem)
	if !ok {
		return
	}
	if err := m.state.Manager.OpenView(item.index, item.md, toAccessors(m.results)); err != nil {
		m.setError(err)
	}
}

func (m *Model) submitSearch(query string) {
	query = strings.TrimSpace(query)
	params := url.Values{}
	if query != "" {
		params.Set(searchParam, query)
	}
	m.state.Location.SetSearch(params)
	m.search()
}

// search queries the catalog with the location's parameters. Results of an
// earlier search that complete later are dropped.
func (m *Model) search() {
	q := catalog.QueryFromValues(m.state.Location.Params())
	if q.From <= 0 {
		q.From = 1
	}
	if q.To <= 0 {
		q.To = q.From + m.state.Catalog.PageSize - 1
	}

	m.searchGen++
	gen := m.searchGen
	client := m.state.Client
	m.setStatus("Searching…")

	m.state.Loop.Go(func(ctx context.Context) func() {
		resp, err := client.Search(ctx, q)
		return func() {
			m.searchDone(gen, resp, err)
		}
	})
}

func (m *Model) searchDone(gen uint64, resp *catalog.SearchResponse, err error) {
	if gen != m.searchGen {
		return
	}
	if err != nil {
		m.setError(fmt.Errorf("search: %w", err))
		return
	}

	m.results = resp.Metadata
	m.total = resp.Summary.Count
	m.list.SetItems(toItems(m.results, m.itemWidth()))
	m.list.ResetSelected()
	m.setStatus(fmt.Sprintf("%d of %d records", len(m.results), m.total))
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.failed = false
}

func (m *Model) setError(err error) {
	if err == nil {
		return
	}
	var miss *mdview.LookupMissError
	if errors.As(err, &miss) {
		m.status = miss.Error()
	} else {
		m.status = "Error: " + err.Error()
	}
	m.failed = true
	m.state.Logger.Error("browse", "error", err)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	h, v := appStyle.GetFrameSize()
	inner := width - h
	body := height - v - lipgloss.Height(m.inputView()) - 2

	m.list.SetSize(inner, body)
	m.list.SetItems(toItems(m.results, m.itemWidth()))

	m.detail.Width = inner
	m.detail.Height = body - lipgloss.Height(m.recordHeader()) - 1
	if err := m.state.Document.Resize(constants.DetailTarget, inner); err != nil {
		m.setError(fmt.Errorf("resize detail: %w", err))
	}
	m.shownVersion = -1
}

func (m *Model) itemWidth() int {
	h, _ := appStyle.GetFrameSize()
	return m.width - h - 4
}

// syncDetail refreshes the viewport when the displayed record or the
// rendered formatter content changed.
func (m *Model) syncDetail() {
	current := m.state.Manager.Current()
	version := m.state.Document.Version()
	if version == m.shownVersion && current == m.shownRecord {
		return
	}
	m.shownVersion = version
	m.shownRecord = current
	m.detail.SetContent(m.state.Document.Content(constants.DetailTarget))
	m.detail.GotoTop()
}

func (m *Model) recordHeader() string {
	current := m.state.Manager.Current()
	if current == nil || current.UUID != m.state.Location.UUID() {
		return titleStyle.Render("Loading " + m.state.Location.UUID())
	}

	title := current.UUID
	if md, ok := current.Source.(*record.Metadata); ok {
		title = md.DisplayTitle()
	}

	counts := fmt.Sprintf(
		"Links %d · Downloads %d · Layers %d · Overviews %d",
		len(current.Links),
		len(current.Downloads),
		len(current.Layers),
		len(current.Overviews),
	)
	lines := []string{
		titleStyle.Render(clip(title, m.itemWidth())),
		summaryStyle.Render(counts),
	}
	if len(current.Contacts) > 0 {
		c := current.Contacts[0]
		lines = append(lines, summaryStyle.Render(strings.TrimSpace(c.Role+" "+c.Organisation)))
	}
	if vs := m.state.Manager.State(); vs.Index >= 0 && len(vs.Records) > 0 {
		lines = append(lines, summaryStyle.Render(fmt.Sprintf("Record %d of %d", vs.Index+1, len(vs.Records))))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) inputView() string {
	return inputStyle.Render(m.input.View())
}

func (m *Model) View() string {
	var body string
	if m.state.Location.IsMdView() {
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			m.recordHeader(),
			detailStyle.Render(m.detail.View()),
			m.help.View(recordKeys{m.keys}),
		)
	} else {
		body = m.list.View()
	}

	status := statusBannerStyle.Render(m.state.RootStatus.Value())
	if m.status != "" {
		style := statusBannerStyle
		if m.failed {
			style = errorStyle
		}
		status += "  " + style.Render(m.status)
	}

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.inputView(), body, status))
}

// Run starts the browser. A non-empty query is searched right away.
func Run(s *state.State, query string) error {
	if query != "" {
		s.Location.SetSearch(url.Values{searchParam: {query}})
	}

	s.Start()
	if err := s.Watch(); err != nil {
		s.Logger.Warn("config watch disabled", "error", err)
	}

	if _, err := tea.NewProgram(NewModel(s), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
