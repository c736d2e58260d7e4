package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/pkg/escape"
)

// Kind is the declared type of an antiraid parameter. The set of kinds is
// closed: Int, EncodedString and String are the only implementations.
type Kind interface {
	fmt.Stringer

	// Parse coerces raw user input into the stored representation.
	Parse(raw string) (any, error)
	// Format renders a stored value for display.
	Format(v any) string
	// Normalize converts a value read back from a document store into the
	// stored representation.
	Normalize(v any) (any, bool)

	sealed()
}

var (
	Int           Kind = intKind{}
	EncodedString Kind = encodedStringKind{}
	String        Kind = stringKind{}
)

type intKind struct{}

func (intKind) sealed()        {}
func (intKind) String() string { return "int" }

// Parse clamps negative numbers to zero. Input that is not a whole number
// is rejected with ErrInvalidValue.
func (intKind) Parse(raw string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a whole number", ErrInvalidValue, raw)
	}
	return max(0, n), nil
}

func (intKind) Format(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (intKind) Normalize(v any) (any, bool) {
	switch n := v.(type) {
	case int:
		return max(0, n), true
	case int32:
		return max(0, int(n)), true
	case int64:
		return max(0, int(n)), true
	case float64:
		return max(0, int(n)), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return nil, false
		}
		return max(0, i), true
	}
	return nil, false
}

type encodedStringKind struct{}

func (encodedStringKind) sealed()        {}
func (encodedStringKind) String() string { return "encodedString" }

func (encodedStringKind) Parse(raw string) (any, error) {
	return escape.Escape(raw), nil
}

func (encodedStringKind) Format(v any) string {
	s, _ := v.(string)
	return escape.Unescape(s)
}

func (encodedStringKind) Normalize(v any) (any, bool) {
	s, ok := v.(string)
	return s, ok
}

type stringKind struct{}

func (stringKind) sealed()        {}
func (stringKind) String() string { return "string" }

func (stringKind) Parse(raw string) (any, error) {
	return strings.TrimSpace(raw), nil
}

func (stringKind) Format(v any) string {
	s, _ := v.(string)
	return s
}

func (stringKind) Normalize(v any) (any, bool) {
	s, ok := v.(string)
	return s, ok
}
