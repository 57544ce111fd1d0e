package browse

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/store"
)

// stubStore is an in-memory ContactStore.
type stubStore struct {
	contacts []contact.Contact
	saveErr  error
	deleted  []int
}

func newStubStore(names ...string) *stubStore {
	s := &stubStore{}
	for _, n := range names {
		s.contacts = append(s.contacts, contact.New(n, "doe", "555-"+n, n+"@example.com"))
	}
	return s
}

func (s *stubStore) List() []contact.Contact { return slices.Clone(s.contacts) }

func (s *stubStore) Delete(index int) (contact.Contact, error) {
	if index < 1 || index > len(s.contacts) {
		return contact.Contact{}, fmt.Errorf("%w: %d", store.ErrIndexOutOfRange, index)
	}
	removed := s.contacts[index-1]
	s.contacts = slices.Delete(s.contacts, index-1, index)
	s.deleted = append(s.deleted, index)
	return removed, s.saveErr
}

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// loadedModel returns a sized model with the store's contacts applied.
func loadedModel(t *testing.T, store ContactStore) Model {
	t.Helper()
	m := NewModel(store)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)
	updated, _ = m.Update(m.Init()())
	return updated.(Model)
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(Model)
	}
	return m, cmd
}
