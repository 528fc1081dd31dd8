package config

import "strings"

func normalizeDatabaseConfig(cfg DatabaseRuntimeConfig) DatabaseRuntimeConfig {
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	cfg.URL = strings.TrimSpace(cfg.URL)
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.User = strings.TrimSpace(cfg.User)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.Password = strings.TrimSpace(cfg.Password)
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.DBName = strings.TrimSpace(cfg.DBName)
	cfg.Charset = strings.TrimSpace(cfg.Charset)
	cfg.Loc = strings.TrimSpace(cfg.Loc)

	if cfg.User == "" && cfg.Username != "" {
		cfg.User = cfg.Username
	}
	if cfg.Name == "" && cfg.DBName != "" {
		cfg.Name = cfg.DBName
	}
	if cfg.Host == "" {
		cfg.Host = defaultDBHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultDBPort
	}
	if cfg.User == "" {
		cfg.User = defaultDBUser
	}
	if cfg.Name == "" {
		cfg.Name = defaultDBName
	}
	if cfg.Charset == "" {
		cfg.Charset = defaultDBCharset
	}
	if cfg.Loc == "" {
		cfg.Loc = defaultDBLoc
	}
	return cfg
}

func normalizeRedisConfig(cfg RedisRuntimeConfig) RedisRuntimeConfig {
	cfg.URL = strings.TrimSpace(cfg.URL)
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.Password = strings.TrimSpace(cfg.Password)
	cfg.Scheme = strings.ToLower(strings.TrimSpace(cfg.Scheme))

	if cfg.Host == "" && cfg.URL == "" {
		cfg.Host = defaultRedisHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultRedisPort
	}
	if cfg.DB < 0 {
		cfg.DB = defaultRedisDB
	}
	if cfg.Scheme == "" {
		if cfg.TLS {
			cfg.Scheme = "rediss"
		} else {
			cfg.Scheme = "redis"
		}
	}
	return cfg
}

func mergeDatabaseConfig(base, override DatabaseRuntimeConfig) DatabaseRuntimeConfig {
	if v := strings.TrimSpace(override.DSN); v != "" {
		base.DSN = v
	}
	if v := strings.TrimSpace(override.URL); v != "" {
		base.URL = v
	}
	if v := strings.TrimSpace(override.Host); v != "" {
		base.Host = v
	}
	if override.Port != 0 {
		base.Port = override.Port
	}
	if v := strings.TrimSpace(override.User); v != "" {
		base.User = v
	}
	if v := strings.TrimSpace(override.Username); v != "" {
		base.Username = v
	}
	if v := strings.TrimSpace(override.Password); v != "" {
		base.Password = v
	}
	if v := strings.TrimSpace(override.Name); v != "" {
		base.Name = v
	}
	if v := strings.TrimSpace(override.DBName); v != "" {
		base.DBName = v
	}
	if v := strings.TrimSpace(override.Charset); v != "" {
		base.Charset = v
	}
	if v := strings.TrimSpace(override.Loc); v != "" {
		base.Loc = v
	}
	if override.Params != nil {
		base.Params = override.Params
	}
	return base
}

func mergeRedisConfig(base, override RedisRuntimeConfig) RedisRuntimeConfig {
	if v := strings.TrimSpace(override.URL); v != "" {
		base.URL = v
	}
	if v := strings.TrimSpace(override.Host); v != "" {
		base.Host = v
	}
	if override.Port != 0 {
		base.Port = override.Port
	}
	if v := strings.TrimSpace(override.Username); v != "" {
		base.Username = v
	}
	if v := strings.TrimSpace(override.Password); v != "" {
		base.Password = v
	}
	if override.DB != 0 {
		base.DB = override.DB
	}
	if override.TLS {
		base.TLS = true
	}
	if v := strings.TrimSpace(override.Scheme); v != "" {
		base.Scheme = v
	}
	if override.Params != nil {
		base.Params = override.Params
	}
	return base
}

func mergeAuthConfig(base, override AuthRuntimeConfig) AuthRuntimeConfig {
	if override.OTPTTLMinutes != 0 {
		base.OTPTTLMinutes = override.OTPTTLMinutes
	}
	if override.OTPCodeLength != 0 {
		base.OTPCodeLength = override.OTPCodeLength
	}
	if override.OTPMaxAttempts != 0 {
		base.OTPMaxAttempts = override.OTPMaxAttempts
	}
	if override.OTPResendCooldownSeconds != 0 {
		base.OTPResendCooldownSeconds = override.OTPResendCooldownSeconds
	}
	if override.SessionTTLHours != 0 {
		base.SessionTTLHours = override.SessionTTLHours
	}
	if override.ExposeCode {
		base.ExposeCode = true
	}
	return base
}
