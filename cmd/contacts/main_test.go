package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/logger"
	"github.com/smileynet/contacts/internal/store"
)

// errExitCalled is a sentinel used to catch kong's os.Exit calls in tests.
var errExitCalled = errors.New("exit called")

const twoContacts = "ada lovelace,555-1234,ada@example.com\ngrace hopper,555-0000,grace@navy.mil\n"

// writeContacts writes content to a fresh contacts file and returns its path.
func writeContacts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func openStore(t *testing.T, content string) (*store.FileStore, string) {
	t.Helper()
	path := writeContacts(t, content)
	st, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	return st, path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func newParser(t *testing.T, cli *CLI) *kong.Kong {
	t.Helper()
	k, err := kong.New(cli, kong.Vars{"version": "test"})
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func TestCLI_Parse(t *testing.T) {
	t.Run("version flag prints version commit and date", func(t *testing.T) {
		// Given: a CLI parser with version, commit, and date fields
		var cli CLI
		var buf bytes.Buffer
		versionStr := "v1.0.0 abc1234 2026-01-01T00:00:00Z"
		k, err := kong.New(&cli,
			kong.Vars{"version": versionStr},
			kong.Writers(&buf, &buf),
			kong.Exit(func(int) { panic(errExitCalled) }),
		)
		if err != nil {
			t.Fatal(err)
		}

		// When: --version flag is passed
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected panic from --version flag")
			}
			err, ok := r.(error)
			if !ok || !errors.Is(err, errExitCalled) {
				panic(r)
			}

			// Then: version, commit, and date are all present in output
			output := buf.String()
			for _, want := range []string{"v1.0.0", "abc1234", "2026-01-01T00:00:00Z"} {
				if !strings.Contains(output, want) {
					t.Errorf("version output = %q, want to contain %q", output, want)
				}
			}
		}()

		k.Parse([]string{"--version"}) //nolint:errcheck // --version triggers panic via Exit hook
	})

	t.Run("no args opens the menu", func(t *testing.T) {
		// Given: a CLI parser
		var cli CLI
		k := newParser(t, &cli)

		// When: no arguments are provided
		kctx, err := k.Parse([]string{})

		// Then: the default menu command is selected
		if err != nil {
			t.Fatal(err)
		}
		if kctx.Command() != "menu" {
			t.Errorf("got command %q, want %q", kctx.Command(), "menu")
		}
	})

	t.Run("global file flag", func(t *testing.T) {
		var cli CLI
		k := newParser(t, &cli)

		if _, err := k.Parse([]string{"--file", "/tmp/book.txt", "list"}); err != nil {
			t.Fatal(err)
		}
		if cli.File != "/tmp/book.txt" {
			t.Errorf("file = %q, want %q", cli.File, "/tmp/book.txt")
		}
	})

	t.Run("add takes four arguments", func(t *testing.T) {
		var cli CLI
		k := newParser(t, &cli)

		kctx, err := k.Parse([]string{"add", "Ada", "Lovelace", "555-1234", "ada@example.com"})
		if err != nil {
			t.Fatal(err)
		}
		if kctx.Command() != "add <first> <last> <phone> <email>" {
			t.Errorf("got command %q", kctx.Command())
		}
		if cli.Add.First != "Ada" || cli.Add.Email != "ada@example.com" {
			t.Errorf("add = %+v", cli.Add)
		}
	})

	t.Run("add with missing arguments errors", func(t *testing.T) {
		var cli CLI
		k := newParser(t, &cli)

		if _, err := k.Parse([]string{"add", "Ada"}); err == nil {
			t.Fatal("expected error for missing arguments")
		}
	})

	t.Run("edit accepts field flags", func(t *testing.T) {
		var cli CLI
		k := newParser(t, &cli)

		if _, err := k.Parse([]string{"edit", "2", "--phone", "555-7777"}); err != nil {
			t.Fatal(err)
		}
		if cli.Edit.Index != 2 || cli.Edit.Phone != "555-7777" || cli.Edit.First != "" {
			t.Errorf("edit = %+v", cli.Edit)
		}
	})

	t.Run("edit rejects non-numeric index", func(t *testing.T) {
		var cli CLI
		k := newParser(t, &cli)

		if _, err := k.Parse([]string{"edit", "two"}); err == nil {
			t.Fatal("expected error for non-numeric index")
		}
	})

	t.Run("delete accepts --yes", func(t *testing.T) {
		var cli CLI
		k := newParser(t, &cli)

		if _, err := k.Parse([]string{"delete", "1", "-y"}); err != nil {
			t.Fatal(err)
		}
		if cli.Delete.Index != 1 || !cli.Delete.Yes {
			t.Errorf("delete = %+v", cli.Delete)
		}
	})
}

func TestGlobals_Open(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Run("file flag selects the contacts file", func(t *testing.T) {
		path := writeContacts(t, twoContacts)
		g := Globals{File: path}

		st, _, err := g.open()
		if err != nil {
			t.Fatalf("open() error = %v", err)
		}
		if st.Path() != path || st.Len() != 2 {
			t.Errorf("store = %s with %d contacts", st.Path(), st.Len())
		}
	})

	t.Run("malformed file is a storage failure", func(t *testing.T) {
		g := Globals{File: writeContacts(t, "not a contact\n")}

		_, _, err := g.open()

		var pe *store.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("open() error = %v, want ParseError", err)
		}
		if exitCode(err) != exitStorage {
			t.Errorf("exitCode = %d, want %d", exitCode(err), exitStorage)
		}
	})

	t.Run("lenient config skips malformed lines", func(t *testing.T) {
		cfgPath := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(cfgPath, []byte("store:\n  strict: false\nlog:\n  file: "+os.DevNull+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		g := Globals{File: writeContacts(t, "broken\n"+twoContacts), Config: cfgPath}

		st, _, err := g.open()
		if err != nil {
			t.Fatalf("open() error = %v", err)
		}
		if st.Len() != 2 {
			t.Errorf("Len() = %d, want 2", st.Len())
		}
	})

	t.Run("missing explicit config is a setup failure", func(t *testing.T) {
		g := Globals{Config: filepath.Join(t.TempDir(), "nope.yaml")}

		_, _, err := g.open()

		if err == nil {
			t.Fatal("expected error for missing config")
		}
		if exitCode(err) != exitSetup {
			t.Errorf("exitCode = %d, want %d", exitCode(err), exitSetup)
		}
	})

	t.Run("env overrides the file", func(t *testing.T) {
		path := writeContacts(t, twoContacts)
		t.Setenv("CONTACTS_FILE", path)
		g := Globals{}

		st, _, err := g.open()
		if err != nil {
			t.Fatalf("open() error = %v", err)
		}
		if st.Path() != path {
			t.Errorf("Path() = %q, want %q", st.Path(), path)
		}
	})
}

func TestRunMenu_AddThenExit(t *testing.T) {
	// Given an empty contacts file
	st, path := openStore(t, "")
	var out bytes.Buffer

	// When the menu adds Ada and exits
	input := "1\nAda\nLovelace\n555-1234\nada@example.com\n5\n"
	err := runMenu(strings.NewReader(input), &out, st, logger.Discard())

	// Then the file holds exactly her line
	if err != nil {
		t.Fatalf("runMenu() error = %v", err)
	}
	if got := readFile(t, path); got != "ada lovelace,555-1234,ada@example.com\n" {
		t.Errorf("file = %q", got)
	}
}

func TestRunList(t *testing.T) {
	t.Run("prints numbered contacts", func(t *testing.T) {
		st, _ := openStore(t, twoContacts)
		var out bytes.Buffer

		runList(&out, st)

		for _, want := range []string{"1.\n    Name:  ada lovelace", "2.\n    Name:  grace hopper"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q:\n%s", want, out.String())
			}
		}
	})

	t.Run("empty store", func(t *testing.T) {
		st, _ := openStore(t, "")
		var out bytes.Buffer

		runList(&out, st)

		if !strings.Contains(out.String(), "No contacts found.") {
			t.Errorf("output = %q", out.String())
		}
	})
}

func TestAddCmd_Run(t *testing.T) {
	t.Run("appends normalized contact", func(t *testing.T) {
		st, path := openStore(t, twoContacts)
		var out bytes.Buffer
		cmd := &AddCmd{First: "Alan", Last: "Turing", Phone: "555-1", Email: "Alan@Example.com"}

		if err := cmd.run(&out, st); err != nil {
			t.Fatalf("run() error = %v", err)
		}
		if !strings.HasSuffix(readFile(t, path), "alan turing,555-1,alan@example.com\n") {
			t.Errorf("file = %q", readFile(t, path))
		}
		if !strings.Contains(out.String(), "Contact added successfully!") {
			t.Errorf("output = %q", out.String())
		}
	})

	t.Run("invalid field is a usage error", func(t *testing.T) {
		st, path := openStore(t, "")
		cmd := &AddCmd{First: "Mary Ann", Last: "Evans", Phone: "1", Email: "m@e.uk"}

		err := cmd.run(&bytes.Buffer{}, st)

		if !errors.Is(err, contact.ErrInvalidField) {
			t.Fatalf("run() error = %v, want ErrInvalidField", err)
		}
		if exitCode(err) != exitSetup {
			t.Errorf("exitCode = %d, want %d", exitCode(err), exitSetup)
		}
		if readFile(t, path) != "" {
			t.Errorf("file = %q, want empty", readFile(t, path))
		}
	})

	t.Run("save failure is a storage failure", func(t *testing.T) {
		st, path := openStore(t, "")
		if err := os.RemoveAll(filepath.Dir(path)); err != nil {
			t.Fatal(err)
		}
		cmd := &AddCmd{First: "ada", Last: "lovelace", Phone: "1", Email: "a@b.c"}

		err := cmd.run(&bytes.Buffer{}, st)

		if exitCode(err) != exitStorage {
			t.Errorf("exitCode(%v) = %d, want %d", err, exitCode(err), exitStorage)
		}
	})
}

func TestEditCmd_Run(t *testing.T) {
	t.Run("phone only", func(t *testing.T) {
		st, path := openStore(t, twoContacts)
		cmd := &EditCmd{Index: 2, Phone: "555-7777"}

		if err := cmd.run(&bytes.Buffer{}, st); err != nil {
			t.Fatalf("run() error = %v", err)
		}
		want := "ada lovelace,555-1234,ada@example.com\ngrace hopper,555-7777,grace@navy.mil\n"
		if got := readFile(t, path); got != want {
			t.Errorf("file = %q, want %q", got, want)
		}
	})

	t.Run("out of range index", func(t *testing.T) {
		st, _ := openStore(t, twoContacts)
		cmd := &EditCmd{Index: 3, Phone: "1"}

		err := cmd.run(&bytes.Buffer{}, st)

		if !errors.Is(err, store.ErrIndexOutOfRange) {
			t.Fatalf("run() error = %v, want ErrIndexOutOfRange", err)
		}
		if exitCode(err) != exitStorage {
			t.Errorf("exitCode = %d, want %d", exitCode(err), exitStorage)
		}
	})
}

func TestDeleteCmd_Run(t *testing.T) {
	tests := []struct {
		name     string
		cmd      DeleteCmd
		input    string
		wantFile string
		wantOut  string
	}{
		{
			name:     "yes flag skips the prompt",
			cmd:      DeleteCmd{Index: 1, Yes: true},
			wantFile: "grace hopper,555-0000,grace@navy.mil\n",
			wantOut:  "Contact deleted successfully!",
		},
		{
			name:     "confirmed with yes",
			cmd:      DeleteCmd{Index: 2},
			input:    "YES\n",
			wantFile: "ada lovelace,555-1234,ada@example.com\n",
			wantOut:  "Are you sure you want to delete contact 2? (y/n): ",
		},
		{
			name:     "anything else cancels",
			cmd:      DeleteCmd{Index: 1},
			input:    "1\n",
			wantFile: twoContacts,
			wantOut:  "Deletion cancelled.",
		},
		{
			name:     "end of input cancels",
			cmd:      DeleteCmd{Index: 1},
			wantFile: twoContacts,
			wantOut:  "Deletion cancelled.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, path := openStore(t, twoContacts)
			var out bytes.Buffer

			if err := tt.cmd.run(strings.NewReader(tt.input), &out, st); err != nil {
				t.Fatalf("run() error = %v", err)
			}

			if got := readFile(t, path); got != tt.wantFile {
				t.Errorf("file = %q, want %q", got, tt.wantFile)
			}
			if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output = %q, want to contain %q", out.String(), tt.wantOut)
			}
		})
	}

	t.Run("invalid index never prompts", func(t *testing.T) {
		st, _ := openStore(t, twoContacts)
		var out bytes.Buffer
		cmd := &DeleteCmd{Index: 0}

		err := cmd.run(strings.NewReader("y\n"), &out, st)

		if exitCode(err) != exitStorage {
			t.Errorf("exitCode(%v) = %d, want %d", err, exitCode(err), exitStorage)
		}
		if out.Len() != 0 {
			t.Errorf("output = %q, want none", out.String())
		}
	})
}

func TestBrowseCmd(t *testing.T) {
	t.Run("browse command is parsed", func(t *testing.T) {
		var cli CLI
		k := newParser(t, &cli)

		kctx, err := k.Parse([]string{"browse"})
		if err != nil {
			t.Fatal(err)
		}
		if kctx.Command() != "browse" {
			t.Errorf("got command %q, want %q", kctx.Command(), "browse")
		}
	})

	t.Run("run returns error when not a TTY", func(t *testing.T) {
		// Given a BrowseCmd
		cmd := &BrowseCmd{}

		// When run is called with isTTY=false
		err := cmd.run(false, nil)

		// Then an error mentioning "terminal" is returned
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "terminal") {
			t.Errorf("error = %q, want to contain 'terminal'", err)
		}
		if exitCode(err) != exitSetup {
			t.Errorf("exitCode = %d, want %d", exitCode(err), exitSetup)
		}
	})

	t.Run("run executes tea program when TTY", func(t *testing.T) {
		cmd := &BrowseCmd{}
		mock := &mockTeaRunner{}

		if err := cmd.run(true, mock); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !mock.ran {
			t.Error("tea program was not run")
		}
	})

	t.Run("run returns tea program error", func(t *testing.T) {
		cmd := &BrowseCmd{}
		mock := &mockTeaRunner{err: fmt.Errorf("tea: terminal error")}

		err := cmd.run(true, mock)

		if err == nil || !strings.Contains(err.Error(), "tea: terminal error") {
			t.Errorf("error = %v, want tea error", err)
		}
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitSuccess},
		{name: "storage", err: storageFailure(errors.New("disk full")), want: exitStorage},
		{name: "wrapped storage", err: fmt.Errorf("menu: %w", storageFailure(errors.New("x"))), want: exitStorage},
		{name: "setup", err: errors.New("config: bad"), want: exitSetup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// mockTeaRunner stubs tea program execution for BrowseCmd testing.
type mockTeaRunner struct {
	ran bool
	err error
}

func (m *mockTeaRunner) Run() (tea.Model, error) {
	m.ran = true
	return nil, m.err
}

// Compile-time check: mockTeaRunner satisfies teaRunner.
var _ teaRunner = (*mockTeaRunner)(nil)
