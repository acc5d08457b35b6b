package manager

import "errors"

// ErrBadPlayerID is returned whenever a request names a player id that is
// not (or is no longer) registered.
var ErrBadPlayerID = errors.New("manager: unknown player id")
