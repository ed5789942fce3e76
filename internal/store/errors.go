package store

import "errors"

var ErrDuplicateEvent = errors.New("duplicate event")
