package storage

import "errors"

// NotFoundError is returned when a requested record doesn't exist.
type NotFoundError struct {
	What string
	Key  string
}

func (e NotFoundError) Error() string {
	what := e.What
	if what == "" {
		what = "record"
	}
	if e.Key == "" {
		return what + " not found"
	}
	return what + " not found: " + e.Key
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
