package command

import "errors"

var (
	// ErrObjectNameRequired indicates a record carries a snapshot without a type.
	ErrObjectNameRequired = errors.New("go-logtrail: object data requires object name")
)
