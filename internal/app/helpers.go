package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/signet-id/core/internal/config"
	jwtpkg "github.com/signet-id/core/internal/pkg/jwt"
	"github.com/signet-id/core/internal/pkg/response"
	"go.uber.org/zap"
)

// applyRuntimeSettings propagates config into the few package-level knobs
// (JWT secret, dev-mode error detail) and resolves the process timezone.
func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) (*time.Location, error) {
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}

	response.SetDevMode(cfg.IsDev())

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	time.Local = loc
	return loc, nil
}
