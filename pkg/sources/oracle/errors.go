package oracle

import "errors"

var (
	// ErrNoAddressesConfigured indicates that no token addresses are configured.
	ErrNoAddressesConfigured = errors.New("at least one token address must be configured")
)
