package genre

import (
	"context"
	"errors"
)

var (
	ErrUndetermined = errors.New("genre undetermined")
)

type Role string

const (
	RoleBook   Role = "book"
	RoleAuthor Role = "author"
)

// Inferrer guesses the genres of a book or author absent from the catalog.
// An empty result is reported as ErrUndetermined.
type Inferrer interface {
	Infer(ctx context.Context, subject string, role Role) ([]string, error)
}
