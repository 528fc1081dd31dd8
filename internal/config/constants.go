package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2380
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "signet_core"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultRedisHost  = "localhost"
	defaultRedisPort  = 6379
	defaultRedisDB    = 0

	defaultOTPTTLMinutes            = 10
	defaultOTPCodeLength            = 6
	minimumOTPCodeLength            = 4
	defaultOTPMaxAttempts           = 5
	defaultOTPResendCooldownSeconds = 60
	defaultSessionTTLHours          = 8
)
