package carousel

import (
	"context"

	"github.com/bnema/intelliscan-cli/internal/application"
	"github.com/bnema/intelliscan-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

// BrowseOptions configures an interactive browsing session over a live
// result store.
type BrowseOptions struct {
	Title string
	// MaxBodyLines truncates long text payloads; 0 means no limit.
	MaxBodyLines int
	// OnDelete runs after an entry is removed from the store, with the
	// removed entry's id. Failures show up in the footer but do not undo
	// the local removal.
	OnDelete func(id domain.EntryID) error
}

type snapshotMsg struct {
	snapshot application.ResultSnapshot
}

type browseModel struct {
	store    *application.ResultStore
	opts     BrowseOptions
	styles   styles
	snapshot application.ResultSnapshot
	notice   string
	quitting bool
}

func newBrowseModel(store *application.ResultStore, opts BrowseOptions) browseModel {
	return browseModel{
		store:    store,
		opts:     opts,
		styles:   newStyles(),
		snapshot: store.Snapshot(),
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snapshot = msg.snapshot
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c", "enter":
		m.quitting = true
		return m, tea.Quit
	case "left", "h":
		m.store.Select(m.snapshot.Selected - 1)
		m.snapshot = m.store.Snapshot()
	case "right", "l":
		m.store.Select(m.snapshot.Selected + 1)
		m.snapshot = m.store.Snapshot()
	case "d", "x", "delete":
		return m.deleteActive()
	}
	return m, nil
}

func (m browseModel) deleteActive() (tea.Model, tea.Cmd) {
	active, ok := m.snapshot.Active()
	if !ok {
		return m, nil
	}

	if err := m.store.Delete(active.ID); err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.notice = "Deleted " + active.Name
	if m.opts.OnDelete != nil {
		if err := m.opts.OnDelete(active.ID); err != nil {
			m.notice = "Deleted " + active.Name + " locally; server delete failed: " + err.Error()
		}
	}

	m.snapshot = m.store.Snapshot()
	return m, nil
}

func (m browseModel) View() string {
	if m.quitting {
		return ""
	}

	view := renderView(m.snapshot, RenderOptions{
		Title:        m.opts.Title,
		MaxBodyLines: m.opts.MaxBodyLines,
	}, m.styles)

	footer := m.styles.navHint.Render("left/right: navigate  d: delete  q: quit")
	if m.notice != "" {
		footer = m.styles.meta.Render(m.notice) + "\n" + footer
	}

	return view + "\n\n" + footer + "\n"
}

// Browse runs the carousel as an interactive program over the store: arrow
// keys move the selection, d removes the active entry, q leaves. Resolutions
// landing while the program runs repaint the view through the store's
// observer.
func Browse(ctx context.Context, store *application.ResultStore, opts BrowseOptions) error {
	p := tea.NewProgram(
		newBrowseModel(store, opts),
		tea.WithContext(ctx),
	)

	// Delivered off the mutating goroutine so a Select or Delete issued
	// from Update never sends back into the busy event loop.
	store.SetOnChange(func(s application.ResultSnapshot) {
		go p.Send(snapshotMsg{snapshot: s})
	})
	defer store.SetOnChange(nil)

	_, err := p.Run()
	return err
}
