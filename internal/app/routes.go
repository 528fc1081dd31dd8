package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/signet-id/core/internal/config"
	"github.com/signet-id/core/internal/middleware"
	"github.com/signet-id/core/internal/modules/auth/credential"
	"github.com/signet-id/core/internal/modules/auth/login"
	"github.com/signet-id/core/internal/modules/auth/otp"
	"github.com/signet-id/core/internal/modules/auth/session"
	"github.com/signet-id/core/internal/pkg/mail"
	"github.com/signet-id/core/internal/pkg/response"
	"github.com/signet-id/core/internal/pkg/sms"
)

func (a *App) registerRoutes(loc *time.Location) {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":    "signet-core",
		"version": "1.0.0",
	}

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(a.rc.Raw()))
	r.Use(middleware.Idempotence(a.rc.Raw()))

	// Services
	creds := credential.NewService(credential.NewGormStore(a.db))
	codes := otp.NewService(
		otp.NewGormStore(a.db),
		otp.NewRedisCooldown(a.rc),
		sms.New(smsConfig(a.cfg), a.cfg.Auth.OTPTTL(), a.logger),
		mail.New(mailConfig(a.cfg), a.cfg.Auth.OTPTTL()),
		otp.Options{
			TTL:            a.cfg.Auth.OTPTTL(),
			CodeLength:     a.cfg.Auth.OTPCodeLength,
			MaxAttempts:    a.cfg.Auth.OTPMaxAttempts,
			ResendCooldown: a.cfg.Auth.ResendCooldown(),
			Location:       loc,
		},
		a.logger,
	)
	sessions := session.NewService(session.NewGormStore(a.db), a.cfg.Auth.SessionTTL(), loc, a.logger)
	loginSvc := login.NewService(creds, codes, sessions, a.cfg.Auth.SessionTTL(), a.logger)

	authMW := middleware.Auth(sessions)

	// Versioned API
	api := a.router.Group("/api/v2")

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/health", func(c *gin.Context) {
		sqlDB, err := a.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, "ok", nil)
	})

	exposeCode := a.cfg.Auth.ExposeCode && a.cfg.IsDev()
	login.NewHandler(loginSvc, sessions, exposeCode, a.cfg.Auth.ResendCooldown()).RegisterRoutes(api, authMW)
}

func mailConfig(cfg *config.AppConfig) mail.Config {
	return mail.Config{
		Enable:    cfg.Mail.Enable,
		Host:      cfg.Mail.Host,
		Port:      cfg.Mail.Port,
		User:      cfg.Mail.User,
		Pass:      cfg.Mail.Pass,
		From:      cfg.Mail.From,
		ReplyTo:   cfg.Mail.ReplyTo,
		UseResend: cfg.Mail.UseResend,
		ResendKey: cfg.Mail.ResendKey,
	}
}

func smsConfig(cfg *config.AppConfig) sms.Config {
	return sms.Config{
		Enable:   cfg.SMS.Enable,
		Provider: cfg.SMS.Provider,
		Endpoint: cfg.SMS.Endpoint,
		APIKey:   cfg.SMS.APIKey,
		From:     cfg.SMS.From,
	}
}
