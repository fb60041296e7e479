package tokens

import (
	"errors"
	"fmt"
)

// ErrAuthConfig indicates the client id or client secret is not configured.
var ErrAuthConfig = errors.New("missing client ID or secret")

// PersistenceError reports a failure of the underlying token store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("token store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// persistenceError wraps err unless a store already reported it as a PersistenceError.
func persistenceError(op string, err error) error {
	var pErr *PersistenceError
	if errors.As(err, &pErr) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
