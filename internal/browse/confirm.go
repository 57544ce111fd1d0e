package browse

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contacts/internal/contact"
)

// confirmState holds the contact awaiting deletion.
type confirmState struct {
	index   int
	contact contact.Contact
}

// View renders the confirmation screen.
func (cs confirmState) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Are you sure you want to delete contact %d? (y/n)\n\n", cs.index)
	b.WriteString(cs.contact.Render())
	b.WriteString("\n  [y] Delete   [n/Esc] Cancel")
	return b.String()
}

// deleteContact returns a tea.Cmd that removes the contact at index.
func deleteContact(store ContactStore, index int) tea.Cmd {
	return func() tea.Msg {
		removed, err := store.Delete(index)
		return DeletedMsg{Index: index, Removed: removed, Err: err}
	}
}
