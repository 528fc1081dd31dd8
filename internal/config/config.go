package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type rawAppConfig struct {
	Port           int                   `yaml:"port"`
	DSN            string                `yaml:"dsn"`
	DatabaseURL    string                `yaml:"database_url"`
	RedisURL       string                `yaml:"redis_url"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Env            string                `yaml:"env"`
	NodeEnv        string                `yaml:"node_env"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	JWTSecret      string                `yaml:"jwt_secret"`
	Timezone       string                `yaml:"timezone"`
	TimeZone       string                `yaml:"time_zone"`
	TZ             string                `yaml:"tz"`
	Auth           AuthRuntimeConfig     `yaml:"auth"`
	Mail           MailRuntimeConfig     `yaml:"mail"`
	SMS            SMSRuntimeConfig      `yaml:"sms"`
}

// Load reads, normalizes and validates the YAML config file.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := defaultAppConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	raw := rawAppConfig{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	applyRawAppConfig(&cfg, raw)
	if err := validate(&cfg, path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		Auth: AuthRuntimeConfig{
			OTPTTLMinutes:            defaultOTPTTLMinutes,
			OTPCodeLength:            defaultOTPCodeLength,
			OTPMaxAttempts:           defaultOTPMaxAttempts,
			OTPResendCooldownSeconds: defaultOTPResendCooldownSeconds,
			SessionTTLHours:          defaultSessionTTLHours,
		},
	}
	cfg.Database = normalizeDatabaseConfig(cfg.Database)
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	return cfg
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = v
	}
	if len(raw.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = raw.AllowedOrigins
	}
	if v := strings.TrimSpace(raw.JWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	for _, tz := range []string{raw.Timezone, raw.TimeZone, raw.TZ} {
		if v := strings.TrimSpace(tz); v != "" {
			cfg.Timezone = v
			break
		}
	}

	db := raw.Database
	if v := strings.TrimSpace(raw.DSN); v != "" && db.DSN == "" {
		db.DSN = v
	}
	if v := strings.TrimSpace(raw.DatabaseURL); v != "" && db.URL == "" {
		db.URL = v
	}
	cfg.Database = normalizeDatabaseConfig(mergeDatabaseConfig(cfg.Database, db))
	cfg.DSN = cfg.Database.DSNValue()

	rd := raw.Redis
	if v := strings.TrimSpace(raw.RedisURL); v != "" && rd.URL == "" {
		rd.URL = v
	}
	cfg.Redis = normalizeRedisConfig(mergeRedisConfig(cfg.Redis, rd))
	cfg.RedisURL = cfg.Redis.URLValue()

	cfg.Auth = mergeAuthConfig(cfg.Auth, raw.Auth)
	cfg.Mail = raw.Mail
	cfg.SMS = raw.SMS
}

func validate(cfg *AppConfig, path string) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if cfg.Database.Port < 1 || cfg.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port %d in %q, expected 1-65535", cfg.Database.Port, path)
	}
	if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis.port %d in %q, expected 1-65535", cfg.Redis.Port, path)
	}
	if cfg.Auth.OTPCodeLength < minimumOTPCodeLength {
		return fmt.Errorf("invalid auth.otp_code_length %d in %q, minimum is %d", cfg.Auth.OTPCodeLength, path, minimumOTPCodeLength)
	}
	if cfg.Auth.OTPTTLMinutes < 1 {
		return fmt.Errorf("invalid auth.otp_ttl_minutes %d in %q, expected >= 1", cfg.Auth.OTPTTLMinutes, path)
	}
	if cfg.Auth.SessionTTLHours < 1 {
		return fmt.Errorf("invalid auth.session_ttl_hours %d in %q, expected >= 1", cfg.Auth.SessionTTLHours, path)
	}
	if cfg.Auth.OTPMaxAttempts < 1 {
		return fmt.Errorf("invalid auth.otp_max_attempts %d in %q, expected >= 1", cfg.Auth.OTPMaxAttempts, path)
	}
	if _, err := cfg.Location(); err != nil {
		return err
	}
	return nil
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "development")
}

// Location resolves the configured reference time zone. Accepts an IANA zone
// name (e.g. Europe/Berlin) or a UTC offset (e.g. +05:30). Empty means local.
func (c *AppConfig) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" {
		return time.Local, nil
	}
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, nil
	}
	if len(tz) == 6 && (tz[0] == '+' || tz[0] == '-') && tz[3] == ':' {
		h, errH := strconv.Atoi(tz[1:3])
		m, errM := strconv.Atoi(tz[4:6])
		if errH == nil && errM == nil && h <= 23 && m <= 59 {
			offset := h*3600 + m*60
			if tz[0] == '-' {
				offset = -offset
			}
			return time.FixedZone(tz, offset), nil
		}
	}
	return nil, fmt.Errorf("invalid timezone %q: expect IANA zone (e.g. Europe/Berlin) or UTC offset (e.g. +05:30)", tz)
}
