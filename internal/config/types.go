package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	DSN            string                `yaml:"dsn"` // MySQL DSN
	RedisURL       string                `yaml:"redis_url"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Env            string                `yaml:"env"` // "development" | "production"
	AllowedOrigins []string              `yaml:"allowed_origins"`
	JWTSecret      string                `yaml:"jwt_secret"`
	Timezone       string                `yaml:"timezone"`
	Auth           AuthRuntimeConfig     `yaml:"auth"`
	Mail           MailRuntimeConfig     `yaml:"mail"`
	SMS            SMSRuntimeConfig      `yaml:"sms"`
}

type DatabaseRuntimeConfig struct {
	DSN       string            `yaml:"dsn"`
	URL       string            `yaml:"url"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Username  string            `yaml:"username"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	DBName    string            `yaml:"db_name"`
	Charset   string            `yaml:"charset"`
	ParseTime bool              `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type RedisRuntimeConfig struct {
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       int               `yaml:"db"`
	TLS      bool              `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

// AuthRuntimeConfig carries the lifecycle knobs of the login state machine.
// Every component receives these at construction, never via ambient globals.
type AuthRuntimeConfig struct {
	OTPTTLMinutes            int  `yaml:"otp_ttl_minutes"`
	OTPCodeLength            int  `yaml:"otp_code_length"`
	OTPMaxAttempts           int  `yaml:"otp_max_attempts"`
	OTPResendCooldownSeconds int  `yaml:"otp_resend_cooldown_seconds"`
	SessionTTLHours          int  `yaml:"session_ttl_hours"`
	ExposeCode               bool `yaml:"expose_code"` // dev-only in-band code disclosure
}

func (a AuthRuntimeConfig) OTPTTL() time.Duration {
	return time.Duration(a.OTPTTLMinutes) * time.Minute
}

func (a AuthRuntimeConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLHours) * time.Hour
}

func (a AuthRuntimeConfig) ResendCooldown() time.Duration {
	return time.Duration(a.OTPResendCooldownSeconds) * time.Second
}

type MailRuntimeConfig struct {
	Enable    bool   `yaml:"enable"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Pass      string `yaml:"pass"`
	From      string `yaml:"from"`
	ReplyTo   string `yaml:"reply_to"`
	UseResend bool   `yaml:"use_resend"`
	ResendKey string `yaml:"resend_key"`
}

type SMSRuntimeConfig struct {
	Enable   bool   `yaml:"enable"`
	Provider string `yaml:"provider"` // "http" | "log"
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	From     string `yaml:"from"`
}
