package middleware

import "errors"

var (
	errTokenRequired   = errors.New("token is required")
	errSessionRequired = errors.New("token carries no session binding")
	errSessionMismatch = errors.New("session does not belong to token subject")
)
