package config

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Storage.Redis.Addr == "" {
		return ErrInvalidSessionStoreConfigs
	}

	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.Auth.PasswordMinLength < 1 ||
		cfg.Auth.MaxLoginAttempts < 1 ||
		cfg.Auth.LockoutWindow <= 0 ||
		cfg.Auth.SessionLifetime <= 0 {
		return ErrInvalidAuthConfigs
	}

	return nil
}
