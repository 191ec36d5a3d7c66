// Package errdefer runs cleanup operations deferred until the end
// of a function whose errors must still reach the caller.
package errdefer

import (
	"errors"
	"io"
)

// Close calls Close on the given Closer,
// and joins any error returned with the given error.
//
// Use it inside a defer statement with a named return:
//
//	defer errdefer.Close(&err, f)
func Close(err *error, closer io.Closer) {
	*err = errors.Join(*err, closer.Close())
}
