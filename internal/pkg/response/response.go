package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

// devMode controls whether internal error detail is surfaced to callers.
var devMode bool

// SetDevMode toggles error-detail disclosure (call on startup).
func SetDevMode(enabled bool) { devMode = enabled }

// OK sends a 200 envelope with data fields flattened beside status/message.
func OK(c *gin.Context, message string, data gin.H) {
	out := gin.H{"status": statusSuccess, "message": message}
	for k, v := range data {
		out[k] = v
	}
	c.JSON(http.StatusOK, out)
}

// Created sends a 201 envelope.
func Created(c *gin.Context, message string, data gin.H) {
	out := gin.H{"status": statusSuccess, "message": message}
	for k, v := range data {
		out[k] = v
	}
	c.JSON(http.StatusCreated, out)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ValidationError sends a 400 envelope for missing or malformed input.
func ValidationError(c *gin.Context, message string, errs interface{}) {
	out := gin.H{"status": statusFail, "message": message}
	if errs != nil {
		out["errors"] = errs
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, out)
}

// BadRequest sends a 400 envelope with a bare message.
func BadRequest(c *gin.Context, message string) {
	ValidationError(c, message, nil)
}

// Unauthorized sends a 401 envelope.
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": statusFail, "message": message})
}

// Forbidden sends a 403 envelope.
func Forbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": statusFail, "message": message})
}

// NotFound sends a 404 envelope.
func NotFound(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"status": statusFail, "message": message})
}

// MethodNotAllowed sends a 405 envelope.
func MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"status": statusFail, "message": "Method not allowed"})
}

// TooManyRequests sends a 429 envelope.
func TooManyRequests(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"status": statusFail, "message": message})
}

// Conflict sends a 409 envelope.
func Conflict(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusConflict, gin.H{"status": statusFail, "message": message})
}

// InternalError sends a 500 envelope. Error detail is only included in
// development mode; production callers get the generic message.
func InternalError(c *gin.Context, err error) {
	out := gin.H{"status": statusError, "message": "Internal server error"}
	if devMode && err != nil {
		out["error"] = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, out)
}
