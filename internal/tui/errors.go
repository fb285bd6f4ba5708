package tui

import "errors"

// ErrNotBound is returned by Run when no session was bound to the viewer.
var ErrNotBound = errors.New("tui has no session bound")
