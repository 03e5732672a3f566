package cli

import (
	"errors"
	"fmt"

	"draftpad/internal/store"
	"draftpad/internal/validate"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// draftErr turns store.ErrNotFound into a user-facing not-found error.
func draftErr(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return errNotFound("draft", id)
	}
	return err
}

type invalidDraftError struct {
	id   string
	errs validate.Errors
}

func (e invalidDraftError) Error() string {
	return fmt.Sprintf("draft %s is invalid: %s", e.id, e.errs.Error())
}
