package alert

import "errors"

// Sentinel kinds for alert configuration errors.
var (
	ErrInvalidThreshold = errors.New("invalid alert threshold")
)
