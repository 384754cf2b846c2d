package table

import "errors"

// errNoChange ends an operation successfully without committing a snapshot.
var errNoChange = errors.New("no change")
