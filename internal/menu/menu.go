// Package menu implements the numbered, line-oriented contact menu.
package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/logger"
)

// Messages shown to the user.
const (
	MsgNoContacts    = "No contacts found."
	MsgInvalidChoice = "Invalid choice. Please try again."
	MsgInvalidIndex  = "Invalid contact index. Please try again."
	MsgNotANumber    = "Invalid input. Please enter a number."
	MsgAdded         = "Contact added successfully!"
	MsgUpdated       = "Contact updated successfully!"
	MsgDeleted       = "Contact deleted successfully!"
	MsgCancelled     = "Deletion cancelled."
	MsgExiting       = "Exiting Contact Management System..."
)

// cancelIndex is the index answer that backs out of edit and delete.
const cancelIndex = -1

// Store is the contact collection the menu drives.
type Store interface {
	Len() int
	List() []contact.Contact
	CheckIndex(index int) error
	Add(first, last, phone, email string) (contact.Contact, error)
	Edit(index int, e contact.Edits) (contact.Contact, error)
	Delete(index int) (contact.Contact, error)
	Save() error
}

// Session runs the menu against one input and one output stream.
type Session struct {
	store  Store
	in     *bufio.Scanner
	w      io.Writer
	log    *slog.Logger
	styles styles
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a Session reading answers from in and writing to w.
func New(store Store, in io.Reader, w io.Writer, opts ...Option) *Session {
	s := &Session{
		store:  store,
		in:     bufio.NewScanner(in),
		w:      w,
		log:    logger.Discard(),
		styles: newStyles(w),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run shows the menu until the user exits or input ends, then saves.
// The returned error is non-nil only when input could not be read or the
// final save failed.
func (s *Session) Run() error {
	for {
		s.printMenu()
		choice, err := s.prompt("Enter your choice: ")
		if err != nil {
			return s.exit(err)
		}

		switch strings.ToLower(choice) {
		case "1":
			err = s.Add()
		case "2":
			s.View()
		case "3":
			err = s.Edit()
		case "4":
			err = s.Delete()
		case "5":
			return s.exit(nil)
		default:
			s.failure(MsgInvalidChoice)
		}
		if err != nil {
			return s.exit(err)
		}
	}
}

func (s *Session) printMenu() {
	s.println("")
	s.println(s.styles.title.Render("** Contact Management System **"))
	s.println("1. Add Contact")
	s.println("2. View Contacts")
	s.println("3. Edit Contact")
	s.println("4. Delete Contact")
	s.println("5. Exit")
}

// exit flushes the store. A read error other than end of input is returned
// after the flush.
func (s *Session) exit(readErr error) error {
	if readErr != nil && !errors.Is(readErr, io.EOF) {
		if err := s.store.Save(); err != nil {
			s.reportSave(err)
		}
		return fmt.Errorf("menu: reading input: %w", readErr)
	}
	if err := s.store.Save(); err != nil {
		s.reportSave(err)
		return fmt.Errorf("menu: %w", err)
	}
	if readErr != nil {
		s.println("")
	}
	s.println(MsgExiting)
	return nil
}

// View prints every contact, or MsgNoContacts. It reports whether any
// contacts were shown.
func (s *Session) View() bool {
	contacts := s.store.List()
	if len(contacts) == 0 {
		s.println(MsgNoContacts)
		return false
	}

	s.println("")
	s.println(s.styles.title.Render("** Contact List **"))
	s.println("")
	for i, c := range contacts {
		fmt.Fprintf(s.w, "%d.\n%s", i+1, c.Render())
	}
	return true
}

// Add prompts for every field and appends the contact.
func (s *Session) Add() error {
	s.println("")
	s.println(s.styles.title.Render("** Add New Contact **"))

	var values [4]string
	for i, f := range contact.Fields {
		v, err := s.promptField(fmt.Sprintf("Enter %s: ", f), f, false)
		if err != nil {
			return err
		}
		values[i] = v
	}

	if _, err := s.store.Add(values[0], values[1], values[2], values[3]); err != nil {
		s.reportStore(err)
		return nil
	}
	s.success(MsgAdded)
	return nil
}

// Edit lists the contacts, asks for one, and prompts for replacements.
// Blank answers keep the current value.
func (s *Session) Edit() error {
	if !s.View() {
		return nil
	}
	index, ok, err := s.promptIndex("edit")
	if err != nil || !ok {
		return err
	}

	s.println("")
	s.println(s.styles.title.Render(fmt.Sprintf("** Edit Contact (Index: %d) **", index)))
	var edits contact.Edits
	for _, f := range contact.Fields {
		v, err := s.promptField(fmt.Sprintf("Enter new %s (or press Enter to keep existing): ", f), f, true)
		if err != nil {
			return err
		}
		edits.Set(f, v)
	}

	if _, err := s.store.Edit(index, edits); err != nil {
		s.reportStore(err)
		return nil
	}
	s.success(MsgUpdated)
	return nil
}

// Delete lists the contacts, asks for one, and removes it after confirmation.
func (s *Session) Delete() error {
	if !s.View() {
		return nil
	}
	index, ok, err := s.promptIndex("delete")
	if err != nil || !ok {
		return err
	}

	answer, err := s.prompt(fmt.Sprintf("Are you sure you want to delete contact %d? (y/n): ", index))
	if err != nil {
		return err
	}
	if !Confirmed(answer) {
		s.println(MsgCancelled)
		return nil
	}

	if _, err := s.store.Delete(index); err != nil {
		s.reportStore(err)
		return nil
	}
	s.success(MsgDeleted)
	return nil
}

// Confirmed reports whether answer is an affirmative token (y or yes).
func Confirmed(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// promptIndex asks for a 1-based index until it gets a valid one or the
// cancel value. ok is false when the user cancelled.
func (s *Session) promptIndex(action string) (int, bool, error) {
	label := fmt.Sprintf("\nEnter the index of the contact to %s (or %d to cancel): ", action, cancelIndex)
	for {
		text, err := s.prompt(label)
		if err != nil {
			return 0, false, err
		}
		n, convErr := strconv.Atoi(text)
		if convErr != nil {
			s.failure(MsgNotANumber)
			continue
		}
		if n == cancelIndex {
			return 0, false, nil
		}
		if err := s.store.CheckIndex(n); err != nil {
			s.failure(MsgInvalidIndex)
			continue
		}
		return n, true, nil
	}
}

// promptField asks for a value for f until it validates. With allowBlank a
// blank answer is returned as "".
func (s *Session) promptField(label string, f contact.Field, allowBlank bool) (string, error) {
	for {
		v, err := s.prompt(label)
		if err != nil {
			return "", err
		}
		if allowBlank && v == "" {
			return "", nil
		}
		err = contact.ValidateField(f, v)
		if err == nil {
			return v, nil
		}
		var ferr *contact.FieldError
		if errors.As(err, &ferr) {
			s.failure(fmt.Sprintf("The %s %s. Please try again.", ferr.Field, ferr.Reason))
		} else {
			s.failure(err.Error())
		}
	}
}

// prompt writes label and reads one trimmed line. It returns io.EOF when
// input is exhausted.
func (s *Session) prompt(label string) (string, error) {
	fmt.Fprint(s.w, label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

// reportStore prints a failed mutation. Anything other than a rejected field
// is a save failure: the change is kept in memory and written on the next save.
func (s *Session) reportStore(err error) {
	if errors.Is(err, contact.ErrInvalidField) {
		s.failure(err.Error())
		return
	}
	s.reportSave(err)
}

func (s *Session) reportSave(err error) {
	s.log.Error("saving contacts failed", "err", err)
	s.failure(fmt.Sprintf("An error occurred while saving contacts: %v", err))
}

func (s *Session) println(text string) {
	fmt.Fprintln(s.w, text)
}

func (s *Session) success(text string) {
	s.println(s.styles.success.Render(text))
}

func (s *Session) failure(text string) {
	s.println(s.styles.failure.Render(text))
}

// styles renders menu output for the session's writer. Colour is dropped
// automatically when the writer is not a terminal.
type styles struct {
	title   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true),
		success: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"}),
		failure: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"}),
	}
}
