package browse

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	search    key.Binding
	submit    key.Binding
	open      key.Binding
	back      key.Binding
	restore   key.Binding
	next      key.Binding
	prev      key.Binding
	history   key.Binding
	yank      key.Binding
	quit      key.Binding
	forceQuit key.Binding
}

func newKeyMap() *keyMap {
	return &keyMap{
		search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "submit"),
		),
		open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "open"),
		),
		back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back to results"),
		),
		restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "saved address"),
		),
		next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next record"),
		),
		prev: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "previous record"),
		),
		history: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "history back"),
		),
		yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy url"),
		),
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}

// recordKeys are shown while a record is in view.
type recordKeys struct{ *keyMap }

func (k recordKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.back, k.restore, k.next, k.prev, k.history, k.yank, k.quit}
}

func (k recordKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
