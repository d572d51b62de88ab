package cfgsync

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrUnimplemented is returned by operations that are declared but not built.
var ErrUnimplemented = errors.New("not implemented")

// UnsupportedEntryError is returned when an existing path is neither a
// regular file, a directory nor a symlink (sockets, fifos, devices).
type UnsupportedEntryError struct {
	Path string
}

func (e *UnsupportedEntryError) Error() string {
	return fmt.Sprintf("unsupported file: %s", e.Path)
}

// ActionError wraps a failed filesystem mutation with the action and path
// it was applied to.
type ActionError struct {
	Action string
	Path   string
	Cause  error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Action, e.Path, e.Cause)
}

func (e *ActionError) Unwrap() error {
	return e.Cause
}

func newActionError(action, path string, cause error) error {
	return errors.WithHintf(&ActionError{Action: action, Path: path, Cause: cause},
		"check that %s is readable and its parent directory is writable", path)
}
