// Package browse implements a two-pane terminal UI for reading and deleting
// contacts. The numbered menu in internal/menu stays the default surface.
package browse

import "github.com/smileynet/contacts/internal/contact"

// Mode represents the current view mode.
type Mode int

const (
	ModeBrowse  Mode = iota // Browsing the contact list with detail pane.
	ModeConfirm             // Asking whether to delete the selected contact.
)

// Focus represents which pane has keyboard focus.
type Focus int

const (
	PaneLeft  Focus = iota // Contact list has focus.
	PaneRight              // Detail viewport has focus.
)

// ContactStore is the part of the store the UI needs. Indexes are 1-based.
type ContactStore interface {
	List() []contact.Contact
	Delete(index int) (contact.Contact, error)
}

// ContactsMsg carries a fresh copy of the store's contacts.
type ContactsMsg struct {
	Contacts []contact.Contact
}

// DeletedMsg carries the result of a ContactStore.Delete call. Removed is
// set whenever the contact left the in-memory list, even if saving failed.
type DeletedMsg struct {
	Index   int
	Removed contact.Contact
	Err     error
}

// RefreshMsg asks the model to reload the list from the store.
type RefreshMsg struct{}
