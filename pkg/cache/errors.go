package cache

import "errors"

var (
	ErrNotFound  = errors.New("cache: entry not found")
	ErrClosed    = errors.New("cache: closed")
	ErrEncode    = errors.New("cache: failed to encode value")
	ErrDecode    = errors.New("cache: failed to decode value")
	ErrStore     = errors.New("cache: failed to store value")
	ErrNilClient = errors.New("cache: redis client is nil")
)
