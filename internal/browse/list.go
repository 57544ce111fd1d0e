package browse

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contacts/internal/contact"
)

// CursorMarker is the prefix shown on the selected row.
const CursorMarker = "▸ "

// listState manages the contact list and cursor for the left pane.
type listState struct {
	contacts []contact.Contact
	cursor   int
	loading  bool
	keys     browseKeys
}

func newListState() listState {
	return listState{loading: true, keys: BrowseKeyMap()}
}

// loadContacts returns a tea.Cmd that reads the store's current list.
func loadContacts(store ContactStore) tea.Cmd {
	return func() tea.Msg {
		return ContactsMsg{Contacts: store.List()}
	}
}

// apply replaces the list, keeping the cursor in range.
func (ls listState) apply(contacts []contact.Contact) listState {
	ls.loading = false
	ls.contacts = slices.Clone(contacts)
	if ls.cursor >= len(ls.contacts) {
		ls.cursor = len(ls.contacts) - 1
	}
	if ls.cursor < 0 {
		ls.cursor = 0
	}
	return ls
}

// handleKey moves the cursor with wraparound.
func (ls listState) handleKey(msg tea.KeyMsg) listState {
	if ls.loading || len(ls.contacts) == 0 {
		return ls
	}
	switch {
	case key.Matches(msg, ls.keys.Up):
		ls.cursor--
		if ls.cursor < 0 {
			ls.cursor = len(ls.contacts) - 1
		}
	case key.Matches(msg, ls.keys.Down):
		ls.cursor++
		if ls.cursor >= len(ls.contacts) {
			ls.cursor = 0
		}
	}
	return ls
}

// Selected returns the 1-based index and contact under the cursor.
// ok is false when the list is empty or still loading.
func (ls listState) Selected() (index int, c contact.Contact, ok bool) {
	if ls.loading || ls.cursor < 0 || ls.cursor >= len(ls.contacts) {
		return 0, contact.Contact{}, false
	}
	return ls.cursor + 1, ls.contacts[ls.cursor], true
}

// View renders the list pane content.
func (ls listState) View() string {
	if ls.loading {
		return "Loading contacts..."
	}
	if len(ls.contacts) == 0 {
		return mutedText.Render("No contacts found.")
	}

	var b strings.Builder
	for i, c := range ls.contacts {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i == ls.cursor {
			b.WriteString(CursorMarker)
		} else {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, c.FullName())
	}
	return b.String()
}
