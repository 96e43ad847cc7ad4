package align

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks invalid options or tokens containing Separator.
	ErrConfiguration = errors.New("configuration error")
	// ErrFormat marks malformed serialized tables or models.
	ErrFormat = errors.New("format error")
	// ErrInvariant marks an internal inconsistency while rebuilding an alignment.
	ErrInvariant = errors.New("invariant violation")
)

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func formatError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

func invariantError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
