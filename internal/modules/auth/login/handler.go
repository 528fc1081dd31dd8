package login

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/signet-id/core/internal/middleware"
	"github.com/signet-id/core/internal/models"
	"github.com/signet-id/core/internal/modules/auth/credential"
	"github.com/signet-id/core/internal/modules/auth/otp"
	"github.com/signet-id/core/internal/modules/auth/session"
	"github.com/signet-id/core/internal/pkg/response"
)

// Handler exposes the login state machine over HTTP: three granular step
// endpoints, one legacy step-dispatch endpoint and the session surface.
type Handler struct {
	svc      *Service
	sessions *session.Service

	// exposeCode allows returning the generated code in the issuance
	// response. Only ever true in development deployments.
	exposeCode bool

	// resendCooldown mirrors the code engine's issuance cooldown so the
	// Retry-After header matches the actual wait.
	resendCooldown time.Duration
}

func NewHandler(svc *Service, sessions *session.Service, exposeCode bool, resendCooldown time.Duration) *Handler {
	return &Handler{svc: svc, sessions: sessions, exposeCode: exposeCode, resendCooldown: resendCooldown}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	a := rg.Group("/auth")

	a.POST("/login", h.legacyLogin)
	a.POST("/login/credentials", h.validateCredentials)
	a.POST("/login/otp", h.sendOTP)
	a.POST("/login/verify", h.finalLogin)

	a.GET("/session", authMW, h.currentSession)
	a.GET("/sessions", authMW, h.listSessions)
	a.POST("/revoke-session", authMW, h.revokeSession)
	a.POST("/revoke-sessions", authMW, h.revokeSessions)
	a.POST("/revoke-other-sessions", authMW, h.revokeOtherSessions)
	a.POST("/sign-out", authMW, h.signOut)
}

func (h *Handler) validateCredentials(c *gin.Context) {
	var dto CredentialsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.ValidationError(c, "Invalid request body", err.Error())
		return
	}
	h.runCredentialValidation(c, dto)
}

func (h *Handler) sendOTP(c *gin.Context) {
	var dto SendOTPDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.ValidationError(c, "Invalid request body", err.Error())
		return
	}
	h.runSendOTP(c, dto)
}

func (h *Handler) finalLogin(c *gin.Context) {
	var dto FinalLoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.ValidationError(c, "Invalid request body", err.Error())
		return
	}
	h.runFinalLogin(c, dto)
}

// legacyLogin routes a single endpoint by step name. The step set is closed;
// unknown steps are a validation error.
func (h *Handler) legacyLogin(c *gin.Context) {
	var dto legacyLoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.ValidationError(c, "Invalid request body", err.Error())
		return
	}

	switch dto.Step {
	case StepCredentialValidation:
		if errs := requireFields(map[string]string{
			"email": dto.Email, "password": dto.Password, "role": dto.Role,
		}); errs != nil {
			response.ValidationError(c, "Missing required fields", errs)
			return
		}
		h.runCredentialValidation(c, CredentialsDTO{Email: dto.Email, Password: dto.Password, Role: dto.Role})
	case StepSendOTP:
		if errs := requireFields(map[string]string{
			"mobile": dto.Mobile, "role": dto.Role,
		}); errs != nil {
			response.ValidationError(c, "Missing required fields", errs)
			return
		}
		h.runSendOTP(c, SendOTPDTO{Mobile: dto.Mobile, Role: dto.Role})
	case StepFinalLogin:
		if errs := requireFields(map[string]string{
			"role": dto.Role, "code": dto.Code,
		}); errs != nil {
			response.ValidationError(c, "Missing required fields", errs)
			return
		}
		h.runFinalLogin(c, FinalLoginDTO{Email: dto.Email, Mobile: dto.Mobile, Role: dto.Role, Code: dto.Code})
	default:
		response.ValidationError(c, "Unknown login step", gin.H{
			"step": "must be one of credential_validation, send_otp, final_login",
		})
	}
}

func (h *Handler) runCredentialValidation(c *gin.Context, dto CredentialsDTO) {
	res, err := h.svc.ValidateCredentials(c.Request.Context(), dto.Email, dto.Role, dto.Password, c.ClientIP())
	if err != nil {
		h.renderLoginError(c, err)
		return
	}
	response.OK(c, "Credentials verified, code sent", h.issuedPayload(res))
}

func (h *Handler) runSendOTP(c *gin.Context, dto SendOTPDTO) {
	res, err := h.svc.SendOTP(c.Request.Context(), dto.Mobile, dto.Role, c.ClientIP())
	if err != nil {
		h.renderLoginError(c, err)
		return
	}
	response.OK(c, "Code sent", h.issuedPayload(res))
}

func (h *Handler) runFinalLogin(c *gin.Context, dto FinalLoginDTO) {
	if strings.TrimSpace(dto.Email) == "" && strings.TrimSpace(dto.Mobile) == "" {
		response.ValidationError(c, "Missing required fields", gin.H{
			"email": "either email or mobile is required",
		})
		return
	}

	res, err := h.svc.FinalLogin(c.Request.Context(), FinalLoginInput{
		Email:  dto.Email,
		Mobile: dto.Mobile,
		Role:   dto.Role,
		Code:   dto.Code,
		Device: deviceLabel(c),
		IP:     c.ClientIP(),
		UA:     c.Request.UserAgent(),
	})
	if err != nil {
		h.renderLoginError(c, err)
		return
	}

	response.OK(c, "Login successful", gin.H{
		"token":   res.Token,
		"session": toSessionResponse(res.Session),
		"user_id": res.Identity.ID,
		"role":    res.Identity.Role,
	})
}

func (h *Handler) issuedPayload(res *IssueResult) gin.H {
	out := gin.H{
		"user_id":    res.UserID,
		"expires_at": res.ExpiresAt,
	}
	if h.exposeCode {
		out["code"] = res.Code
	}
	return out
}

func (h *Handler) renderLoginError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, credential.ErrInvalidCredentials):
		response.Unauthorized(c, "Invalid user credentials")
	case errors.Is(err, otp.ErrNotFound):
		response.Unauthorized(c, "No verification code found, request a new one")
	case errors.Is(err, otp.ErrUsed):
		response.Unauthorized(c, "Verification code already used")
	case errors.Is(err, otp.ErrExpired):
		response.Unauthorized(c, "Verification code expired")
	case errors.Is(err, otp.ErrMismatch):
		response.Unauthorized(c, "Verification code is incorrect")
	case errors.Is(err, otp.ErrTooManyAttempts):
		response.Unauthorized(c, "Too many attempts, request a new code")
	case errors.Is(err, otp.ErrCooldown):
		c.Header("Retry-After", h.retryAfterSeconds())
		response.TooManyRequests(c, "Code requested too recently, wait before retrying")
	case errors.Is(err, otp.ErrNoTarget):
		response.BadRequest(c, "No delivery target on file")
	case errors.Is(err, ErrMobileRequired):
		response.BadRequest(c, "Mobile number required for verification")
	default:
		response.InternalError(c, err)
	}
}

func (h *Handler) retryAfterSeconds() string {
	secs := int(h.resendCooldown.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func (h *Handler) currentSession(c *gin.Context) {
	sess, err := h.sessions.Validate(c.Request.Context(), middleware.CurrentSessionID(c))
	if err != nil {
		response.Unauthorized(c, "Invalid or expired token")
		return
	}
	response.OK(c, "Current session", gin.H{"session": toSessionResponse(sess)})
}

func (h *Handler) listSessions(c *gin.Context) {
	sessions, err := h.sessions.ListActive(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]sessionResponse, len(sessions))
	for i := range sessions {
		items[i] = toSessionResponse(&sessions[i])
	}
	response.OK(c, "Active sessions", gin.H{"sessions": items})
}

func (h *Handler) revokeSession(c *gin.Context) {
	var dto revokeSessionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.ValidationError(c, "Invalid request body", err.Error())
		return
	}
	if err := h.sessions.Revoke(c.Request.Context(), middleware.CurrentUserID(c), dto.SessionID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, "Session revoked", nil)
}

func (h *Handler) revokeSessions(c *gin.Context) {
	if err := h.sessions.RevokeAll(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, "All sessions revoked", nil)
}

func (h *Handler) revokeOtherSessions(c *gin.Context) {
	if err := h.sessions.RevokeAllExcept(c.Request.Context(), middleware.CurrentUserID(c), middleware.CurrentSessionID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, "Other sessions revoked", nil)
}

func (h *Handler) signOut(c *gin.Context) {
	if err := h.sessions.Revoke(c.Request.Context(), middleware.CurrentUserID(c), middleware.CurrentSessionID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, "Signed out", nil)
}

func requireFields(fields map[string]string) gin.H {
	var errs gin.H
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			if errs == nil {
				errs = gin.H{}
			}
			errs[name] = "required"
		}
	}
	return errs
}

func deviceLabel(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader("X-Device")); v != "" {
		return v
	}
	return "web"
}

func toSessionResponse(sess *models.AuthSession) sessionResponse {
	return sessionResponse{
		ID:             sess.ID,
		UserID:         sess.UserID,
		Device:         sess.Device,
		IP:             sess.IP,
		UA:             sess.UA,
		LastActivityAt: sess.LastActivityAt,
		ExpiresAt:      sess.ExpiresAt,
		Created:        sess.CreatedAt,
	}
}
