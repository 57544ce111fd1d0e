// Package contact defines the contact record and its field rules.
package contact

import (
	"errors"
	"fmt"
	"strings"
)

// Separator closes every rendered contact block.
const Separator = "------------------------------------------------------------------------"

// Field identifies one of the four contact fields.
type Field int

const (
	FieldFirstName Field = iota
	FieldLastName
	FieldPhone
	FieldEmail
)

// Fields lists every field in prompt and file order.
var Fields = []Field{FieldFirstName, FieldLastName, FieldPhone, FieldEmail}

// String returns the human label used in prompts.
func (f Field) String() string {
	switch f {
	case FieldFirstName:
		return "first name"
	case FieldLastName:
		return "last name"
	case FieldPhone:
		return "phone number"
	case FieldEmail:
		return "email"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// ErrInvalidField indicates a value the backing file format cannot hold.
var ErrInvalidField = errors.New("contact: invalid field")

// FieldError reports why a value was rejected for a field.
// It matches ErrInvalidField with errors.Is.
type FieldError struct {
	Field  Field
	Reason string // e.g. "is required"
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("contact: invalid %s: %s %s", e.Field, e.Field, e.Reason)
}

func (e *FieldError) Is(target error) bool { return target == ErrInvalidField }

// Contact is one person's stored field set. It has no identity beyond its
// position in a store.
type Contact struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// New builds a Contact with names and email lower-cased. Phone is kept verbatim
// apart from surrounding whitespace.
func New(first, last, phone, email string) Contact {
	return Contact{
		FirstName: Normalize(FieldFirstName, first),
		LastName:  Normalize(FieldLastName, last),
		Phone:     Normalize(FieldPhone, phone),
		Email:     Normalize(FieldEmail, email),
	}
}

// Normalize applies the storage policy for field f to value.
func Normalize(f Field, value string) string {
	value = strings.TrimSpace(value)
	if f == FieldPhone {
		return value
	}
	return strings.ToLower(value)
}

// ValidateField reports whether value can be stored in field f.
// Values must be present and free of the file delimiters; names must also be
// a single word.
func ValidateField(f Field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return &FieldError{Field: f, Reason: "is required"}
	}
	if strings.ContainsAny(value, ",\r\n") {
		return &FieldError{Field: f, Reason: "cannot contain a comma or line break"}
	}
	if (f == FieldFirstName || f == FieldLastName) && len(strings.Fields(value)) != 1 {
		return &FieldError{Field: f, Reason: "cannot contain spaces"}
	}
	return nil
}

// Validate checks every field of c.
func (c Contact) Validate() error {
	for _, f := range Fields {
		if err := ValidateField(f, c.Value(f)); err != nil {
			return err
		}
	}
	return nil
}

// Value returns the current value of field f.
func (c Contact) Value(f Field) string {
	switch f {
	case FieldFirstName:
		return c.FirstName
	case FieldLastName:
		return c.LastName
	case FieldPhone:
		return c.Phone
	case FieldEmail:
		return c.Email
	default:
		return ""
	}
}

// set stores an already-normalized value in field f.
func (c *Contact) set(f Field, value string) {
	switch f {
	case FieldFirstName:
		c.FirstName = value
	case FieldLastName:
		c.LastName = value
	case FieldPhone:
		c.Phone = value
	case FieldEmail:
		c.Email = value
	}
}

// FullName returns "first last".
func (c Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Render returns the multi-line display block for c, ending with Separator.
func (c Contact) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "    Name:  %s\n", c.FullName())
	fmt.Fprintf(&b, "    Phone: %s\n", c.Phone)
	fmt.Fprintf(&b, "    Email: %s\n", c.Email)
	b.WriteString(Separator)
	b.WriteByte('\n')
	return b.String()
}

// Edits holds replacement values for an in-place update.
// A blank value keeps the existing field.
type Edits struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// Value returns the replacement for field f.
func (e Edits) Value(f Field) string {
	return Contact(e).Value(f)
}

// Set records a replacement for field f.
func (e *Edits) Set(f Field, value string) {
	c := Contact(*e)
	c.set(f, value)
	*e = Edits(c)
}

// IsZero reports whether e replaces nothing.
func (e Edits) IsZero() bool {
	for _, f := range Fields {
		if strings.TrimSpace(e.Value(f)) != "" {
			return false
		}
	}
	return true
}

// Validate checks every non-blank replacement in e.
func (e Edits) Validate() error {
	for _, f := range Fields {
		v := e.Value(f)
		if strings.TrimSpace(v) == "" {
			continue
		}
		if err := ValidateField(f, v); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEdits overwrites each field that e supplies, normalizing as New does.
func (c *Contact) ApplyEdits(e Edits) {
	for _, f := range Fields {
		v := Normalize(f, e.Value(f))
		if v == "" {
			continue
		}
		c.set(f, v)
	}
}

// Clear blanks every field.
func (c *Contact) Clear() {
	*c = Contact{}
}
