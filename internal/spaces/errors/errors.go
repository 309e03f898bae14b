package errors

import "errors"

var ErrNotFound = errors.New("space not found")
