package browse

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/contacts/internal/store"
)

// Rows outside the panes: the status line and the help bar.
const footerRows = 2

// paneFrame is the width and height a rounded border adds to a pane.
const paneFrame = 2

// Model is the root Bubble Tea model for the contact browser.
type Model struct {
	store    ContactStore
	mode     Mode
	focus    Focus
	width    int
	height   int
	list     listState
	confirm  confirmState
	deleting bool // a delete command is in flight
	status   string
	viewport viewport.Model
	help     help.Model
	keys     browseKeys
	confirmK confirmKeys
}

// NewModel creates a Model in browse mode with list focus.
func NewModel(store ContactStore) Model {
	return Model{
		store:    store,
		mode:     ModeBrowse,
		focus:    PaneLeft,
		list:     newListState(),
		viewport: viewport.New(0, 0),
		help:     help.New(),
		keys:     BrowseKeyMap(),
		confirmK: ConfirmKeyMap(),
	}
}

// Init loads the contact list.
func (m Model) Init() tea.Cmd {
	return loadContacts(m.store)
}

// Update handles incoming messages with mode-based routing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		_, detailWidth := PaneWidths(msg.Width)
		m.viewport.Width = max(detailWidth-paneFrame, 0)
		m.viewport.Height = m.paneRows()
		return m.syncDetail(), nil

	case ContactsMsg:
		m.list = m.list.apply(msg.Contacts)
		return m.syncDetail(), nil

	case RefreshMsg:
		m.list.loading = true
		return m, loadContacts(m.store)

	case DeletedMsg:
		m.mode = ModeBrowse
		m.deleting = false
		switch {
		case msg.Err == nil:
			m.status = successText.Render("Contact deleted successfully!")
		case errors.Is(msg.Err, store.ErrIndexOutOfRange):
			m.status = failureText.Render(fmt.Sprintf("Could not delete contact %d: %v", msg.Index, msg.Err))
		default:
			m.status = failureText.Render(fmt.Sprintf("An error occurred while saving contacts: %v", msg.Err))
		}
		return m, loadContacts(m.store)

	case tea.KeyMsg:
		if m.mode == ModeConfirm {
			return m.handleConfirmKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey processes keys in browse mode. Delete and reload wait until an
// in-flight delete has finished; delete acts only on the focused list.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	busy := m.deleting && (key.Matches(msg, m.keys.Delete) || key.Matches(msg, m.keys.Refresh))
	switch {
	case busy:
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		if m.focus == PaneLeft {
			m.focus = PaneRight
		} else {
			m.focus = PaneLeft
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.status = ""
		return m, func() tea.Msg { return RefreshMsg{} }

	case key.Matches(msg, m.keys.Delete) && m.focus == PaneLeft:
		index, c, ok := m.list.Selected()
		if !ok {
			return m, nil
		}
		m.mode = ModeConfirm
		m.confirm = confirmState{index: index, contact: c}
		m.status = ""
		return m, nil
	}

	if m.focus == PaneRight {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	m.list = m.list.handleKey(msg)
	return m.syncDetail(), nil
}

// handleConfirmKey accepts only an explicit yes; n or esc cancels.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.confirmK.Yes):
		m.mode = ModeBrowse
		m.deleting = true
		m.status = mutedText.Render("Deleting...")
		return m, deleteContact(m.store, m.confirm.index)
	case key.Matches(msg, m.confirmK.No), msg.String() == "ctrl+c":
		m.mode = ModeBrowse
		m.status = mutedText.Render("Deletion cancelled.")
		return m, nil
	}
	return m, nil
}

// syncDetail points the detail viewport at the selected contact.
func (m Model) syncDetail() Model {
	if _, c, ok := m.list.Selected(); ok {
		m.viewport.SetContent(c.Render())
	} else {
		m.viewport.SetContent("")
	}
	m.viewport.GotoTop()
	return m
}

// paneRows is the number of content rows inside each bordered pane.
func (m Model) paneRows() int {
	return max(m.height-paneFrame-footerRows, 1)
}

// pane draws content inside a border sized to width, accented when focused.
func (m Model) pane(content string, width int, focused bool) string {
	style := UnfocusedBorder()
	if focused {
		style = FocusedBorder()
	}
	return style.
		Width(max(width-paneFrame, 0)).
		Height(m.paneRows()).
		Render(content)
}

// View lays the list and detail panes side by side above the footer.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	listWidth, detailWidth := PaneWidths(m.width)
	list := m.pane(titleText.Render("Contacts")+"\n"+m.list.View(), listWidth, m.focus == PaneLeft)
	detail := m.pane(m.detailView(), detailWidth, m.focus == PaneRight)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, list, detail),
		m.status,
		m.help.View(HelpBindings(m.mode)),
	)
}

// detailView shows the confirmation while one is pending, else the viewport.
func (m Model) detailView() string {
	if m.mode == ModeConfirm {
		return m.confirm.View()
	}
	return m.viewport.View()
}
