package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smileynet/contacts/internal/contact"
)

// ErrMalformedLine indicates a backing-file line that is not
// "<first> <last>,<phone>,<email>".
var ErrMalformedLine = errors.New("store: malformed line")

// ParseError describes a line that could not be decoded.
type ParseError struct {
	Line int    // 1-based line number
	Text string // the offending line
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("store: line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseLine decodes one backing-file line into a Contact.
// Surrounding whitespace is trimmed from every field; case is taken as stored.
func ParseLine(line string) (contact.Contact, error) {
	line = strings.TrimSpace(line)
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return contact.Contact{}, fmt.Errorf("%w: want 3 comma-separated fields, got %d", ErrMalformedLine, len(parts))
	}
	name := strings.Fields(parts[0])
	if len(name) != 2 {
		return contact.Contact{}, fmt.Errorf("%w: want first and last name, got %d name parts", ErrMalformedLine, len(name))
	}
	return contact.Contact{
		FirstName: name[0],
		LastName:  name[1],
		Phone:     strings.TrimSpace(parts[1]),
		Email:     strings.TrimSpace(parts[2]),
	}, nil
}

// FormatLine encodes c as a backing-file line without the trailing newline.
func FormatLine(c contact.Contact) string {
	return c.FirstName + " " + c.LastName + "," + c.Phone + "," + c.Email
}
