package service

import "errors"

var (
	// ErrNotStarted is returned by operations that need the worker pool.
	ErrNotStarted = errors.New("service not started")
	// ErrNoGateway is returned by Start when no terminal gateway is configured.
	ErrNoGateway = errors.New("no terminal gateway configured")
)
