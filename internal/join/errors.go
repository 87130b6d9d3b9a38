package join

import "errors"

var (
	// ErrNoInputs indicates a join was built without inputs.
	ErrNoInputs = errors.New("join: at least one input is required")
	// ErrEmptyKey indicates an input with an empty key.
	ErrEmptyKey = errors.New("join: input key must be provided")
	// ErrDuplicateKey indicates two inputs share a key. Two keys bound to
	// the same store are allowed.
	ErrDuplicateKey = errors.New("join: input keys must be unique")
	// ErrNilStore indicates an input without a store.
	ErrNilStore = errors.New("join: input store must be provided")
)
