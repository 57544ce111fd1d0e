package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/contacts/internal/browse"
	"github.com/smileynet/contacts/internal/config"
	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/logger"
	"github.com/smileynet/contacts/internal/menu"
	"github.com/smileynet/contacts/internal/store"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals are flags shared by every command.
type Globals struct {
	File   string `help:"Contacts file (overrides config)." short:"f" type:"path"`
	Config string `help:"Extra config file layered over user and project config." type:"path"`
}

// CLI is the top-level command structure for contacts.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	Menu    MenuCmd          `cmd:"" default:"1" help:"Open the interactive contact menu."`
	List    ListCmd          `cmd:"" help:"Print all contacts."`
	Add     AddCmd           `cmd:"" help:"Add a contact."`
	Edit    EditCmd          `cmd:"" help:"Edit a contact by index."`
	Delete  DeleteCmd        `cmd:"" help:"Delete a contact by index."`
	Browse  BrowseCmd        `cmd:"" help:"Open the contact browser TUI."`
}

// storageError marks failures of the contacts file, as opposed to setup or
// usage mistakes.
type storageError struct{ err error }

func (e *storageError) Error() string { return e.err.Error() }
func (e *storageError) Unwrap() error { return e.err }

func storageFailure(err error) error {
	if err == nil {
		return nil
	}
	return &storageError{err: err}
}

// loadConfig loads layered config from user, project and explicit paths with
// env overrides. The explicit path must exist.
func loadConfig(explicit string) (*config.Config, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/contacts/config.yaml"),
		".contacts.yaml",
		explicit,
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// open resolves configuration and loads the contacts file.
func (g *Globals) open() (*store.FileStore, *slog.Logger, error) {
	cfg, err := loadConfig(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if g.File != "" {
		cfg.Store.File = g.File
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log := logger.New(cfg.Log)
	st, err := store.Open(cfg.Store.File,
		store.WithLenient(!cfg.Store.Strict),
		store.WithLogger(log),
	)
	if err != nil {
		return nil, nil, storageFailure(err)
	}
	log.Debug("contacts loaded", "path", st.Path(), "count", st.Len())
	return st, log, nil
}

// --- Menu command ---

// MenuCmd runs the numbered menu on stdin and stdout.
type MenuCmd struct{}

// Run executes the menu command.
func (c *MenuCmd) Run(g *Globals) error {
	st, log, err := g.open()
	if err != nil {
		return fmt.Errorf("menu: %w", err)
	}
	return runMenu(os.Stdin, os.Stdout, st, log)
}

func runMenu(in io.Reader, w io.Writer, st menu.Store, log *slog.Logger) error {
	return storageFailure(menu.New(st, in, w, menu.WithLogger(log)).Run())
}

// --- List command ---

// ListCmd prints every contact.
type ListCmd struct{}

// Run executes the list command.
func (c *ListCmd) Run(g *Globals) error {
	st, _, err := g.open()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	runList(os.Stdout, st)
	return nil
}

func runList(w io.Writer, st menu.Store) {
	menu.New(st, strings.NewReader(""), w).View()
}

// --- Add command ---

// AddCmd appends a contact.
type AddCmd struct {
	First string `arg:"" help:"First name."`
	Last  string `arg:"" help:"Last name."`
	Phone string `arg:"" help:"Phone number."`
	Email string `arg:"" help:"Email address."`
}

// Run executes the add command.
func (c *AddCmd) Run(g *Globals) error {
	st, _, err := g.open()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return c.run(os.Stdout, st)
}

// contactAdder abstracts store.FileStore.Add for testing.
type contactAdder interface {
	Add(first, last, phone, email string) (contact.Contact, error)
}

func (c *AddCmd) run(w io.Writer, st contactAdder) error {
	added, err := st.Add(c.First, c.Last, c.Phone, c.Email)
	if errors.Is(err, contact.ErrInvalidField) {
		return fmt.Errorf("add: %w", err)
	}
	if err != nil {
		return storageFailure(fmt.Errorf("add: %w", err))
	}
	_, _ = fmt.Fprintln(w, menu.MsgAdded)
	_, _ = fmt.Fprint(w, added.Render())
	return nil
}

// --- Edit command ---

// EditCmd replaces fields of one contact. Omitted flags keep the current value.
type EditCmd struct {
	Index int    `arg:"" help:"1-based contact index."`
	First string `help:"New first name."`
	Last  string `help:"New last name."`
	Phone string `help:"New phone number."`
	Email string `help:"New email address."`
}

// Run executes the edit command.
func (c *EditCmd) Run(g *Globals) error {
	st, _, err := g.open()
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	return c.run(os.Stdout, st)
}

// contactEditor abstracts store.FileStore.Edit for testing.
type contactEditor interface {
	Edit(index int, e contact.Edits) (contact.Contact, error)
}

func (c *EditCmd) run(w io.Writer, st contactEditor) error {
	edits := contact.Edits{FirstName: c.First, LastName: c.Last, Phone: c.Phone, Email: c.Email}
	updated, err := st.Edit(c.Index, edits)
	if errors.Is(err, contact.ErrInvalidField) {
		return fmt.Errorf("edit: %w", err)
	}
	if err != nil {
		return storageFailure(fmt.Errorf("edit: %w", err))
	}
	_, _ = fmt.Fprintln(w, menu.MsgUpdated)
	_, _ = fmt.Fprint(w, updated.Render())
	return nil
}

// --- Delete command ---

// DeleteCmd removes one contact, asking first unless --yes is given.
type DeleteCmd struct {
	Index int  `arg:"" help:"1-based contact index."`
	Yes   bool `help:"Delete without asking." short:"y"`
}

// Run executes the delete command.
func (c *DeleteCmd) Run(g *Globals) error {
	st, _, err := g.open()
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return c.run(os.Stdin, os.Stdout, st)
}

// contactDeleter abstracts store.FileStore index checks and deletion for testing.
type contactDeleter interface {
	CheckIndex(index int) error
	Delete(index int) (contact.Contact, error)
}

func (c *DeleteCmd) run(in io.Reader, w io.Writer, st contactDeleter) error {
	if err := st.CheckIndex(c.Index); err != nil {
		return storageFailure(fmt.Errorf("delete: %w", err))
	}
	if !c.Yes {
		_, _ = fmt.Fprintf(w, "Are you sure you want to delete contact %d? (y/n): ", c.Index)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		if !menu.Confirmed(answer) {
			_, _ = fmt.Fprintln(w, menu.MsgCancelled)
			return nil
		}
	}
	if _, err := st.Delete(c.Index); err != nil {
		return storageFailure(fmt.Errorf("delete: %w", err))
	}
	_, _ = fmt.Fprintln(w, menu.MsgDeleted)
	return nil
}

// --- Browse command ---

// BrowseCmd opens the contact browser.
type BrowseCmd struct{}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds the store and launches the browser.
func (b *BrowseCmd) Run(g *Globals) error {
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !isTTY {
		return b.run(false, nil)
	}
	st, _, err := g.open()
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	prog := tea.NewProgram(browse.NewModel(st), tea.WithAltScreen())
	return b.run(true, prog)
}

// run executes the tea program, enabling testable wiring.
func (b *BrowseCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("browse: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	return err
}

const (
	exitSuccess = 0
	exitStorage = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *storageError
	if errors.As(err, &se) {
		return exitStorage
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("contacts"),
		kong.Description("A single-user contact book backed by a plain text file."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
