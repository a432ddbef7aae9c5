package cte

import (
	"errors"
	"fmt"
)

// maxIdentifierLength matches PostgreSQL's NAMEDATALEN-1.
const maxIdentifierLength = 63

var (
	// ErrInvalidIdentifier is matched by every *InvalidIdentifierError.
	ErrInvalidIdentifier = errors.New("cte: invalid identifier")

	// ErrNilBody is matched by every *NilBodyError.
	ErrNilBody = errors.New("cte: nil body")
)

// InvalidIdentifierError reports a CTE name that is not a plain identifier.
type InvalidIdentifierError struct {
	Name   string
	Reason string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("cte: invalid identifier %q: %s", e.Name, e.Reason)
}

func (e *InvalidIdentifierError) Is(target error) bool {
	return target == ErrInvalidIdentifier
}

// NilBodyError reports a definition attached without a body.
type NilBodyError struct {
	Name string
}

func (e *NilBodyError) Error() string {
	return fmt.Sprintf("cte: definition %q has a nil body", e.Name)
}

func (e *NilBodyError) Is(target error) bool {
	return target == ErrNilBody
}

// ValidateName checks that name can be used as a CTE name: a letter or
// underscore followed by letters, digits, underscores or dollar signs, at
// most 63 bytes long.
func ValidateName(name string) error {
	if name == "" {
		return &InvalidIdentifierError{Name: name, Reason: "empty name"}
	}
	if len(name) > maxIdentifierLength {
		return &InvalidIdentifierError{
			Name:   name,
			Reason: fmt.Sprintf("longer than %d bytes", maxIdentifierLength),
		}
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '$'):
		default:
			return &InvalidIdentifierError{
				Name:   name,
				Reason: fmt.Sprintf("unexpected character %q at offset %d", string(c), i),
			}
		}
	}
	return nil
}
