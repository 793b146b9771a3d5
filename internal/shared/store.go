package shared

import (
	"errors"
	"fmt"

	"github.com/bizdir/bizdir/internal/platform/docstore"
)

// StoreError classifies a docstore failure on entity id.
func StoreError(err error, entity, id string) error {
	var appErr *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, docstore.ErrNotFound):
		return NotFound(entity, id)
	case errors.Is(err, docstore.ErrConflict):
		return Conflict(fmt.Sprintf("%s %q already exists", entity, id))
	}
	return fmt.Errorf("%s %s: %w", entity, id, err)
}
