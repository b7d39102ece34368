package commute

import "errors"

var (
	// ErrRetriesExhausted is returned by Loop.Run when the loop gives up
	// after max_retries consecutive failed ticks
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrInvalidConfig wraps every configuration validation failure
	ErrInvalidConfig = errors.New("invalid config")
)
