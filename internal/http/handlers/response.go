// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response envelope shared by every endpoint. Failures
// always serialize as an ErrorResponse with a stable machine-readable code;
// successes serialize the domain payload directly. fail() centralizes the
// formatting and logs 5xx responses with the request-scoped logger so server
// faults never pass unrecorded.
//
// Example error response:
//
//	HTTP/1.1 422 Unprocessable Entity
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "invalid_code",
//	  "message": "activation code rejected"
//	}
//
// Example success response:
//
//	HTTP/1.1 200 OK
//	{ "chat_id": "chat123", "warehouse_id": "wh_42", "status": "active" }
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-warehouse-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
// RequestID echoes the X-Request-ID header so client reports can be matched
// against server logs; Code is one of the errors.go constants; Message is
// safe to surface to the chat user.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"invalid_code"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"activation code rejected"`
}

// fail aborts the request with a structured error. Server errors (>=500) are
// additionally logged via the request-scoped logger installed by the
// redacting-logger middleware.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for callers outside this package
// (router fallbacks, middleware). Same envelope, same logging rules.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response with the given status code.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
