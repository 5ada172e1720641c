package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidStorageConfigs indicates invalid relational storage settings
	// (for example, an empty DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidSessionStoreConfigs indicates invalid session store settings
	// (for example, a missing Redis address).
	ErrInvalidSessionStoreConfigs = errors.New("invalid session store configuration")
	// ErrInvalidServerConfigs indicates invalid HTTP server settings
	// (for example, a missing listen address).
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidAuthConfigs indicates an unusable authentication policy
	// (for example, a non-positive lockout window or session lifetime).
	ErrInvalidAuthConfigs = errors.New("invalid auth configuration")
)
