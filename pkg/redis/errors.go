package redis

import "errors"

var (
	ErrEmptyURL    = errors.New("redis: empty connection URL")
	ErrInvalidURL  = errors.New("redis: invalid connection URL")
	ErrConnect     = errors.New("redis: failed to establish connection")
	ErrHealthcheck = errors.New("redis: healthcheck failed")
)
