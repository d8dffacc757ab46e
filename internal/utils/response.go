package utils

import (
	"github.com/gin-gonic/gin" // Gin web framework
)

// Envelope statuses
const (
	StatusSuccess = "success" // Request served
	StatusFail    = "fail"    // Client error
	StatusError   = "error"   // Server error
)

// GenericErrorMessage is the only detail a caller sees for an internal failure
const GenericErrorMessage = "Internal server error"

// Envelope is the body of every API response
type Envelope struct {
	Status  string `json:"status"`            // success, fail or error
	Data    any    `json:"data,omitempty"`    // Payload or field errors
	Message string `json:"message,omitempty"` // Human readable reason
}

// Success writes a success envelope
func Success(c *gin.Context, code int, data any) {
	c.JSON(code, Envelope{Status: StatusSuccess, Data: data})
}

// Fail writes a fail envelope for a client error
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Envelope{Status: StatusFail, Message: message})
}

// AbortFail writes a fail envelope and stops the handler chain
func AbortFail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Envelope{Status: StatusFail, Message: message})
}

// AbortError writes an error envelope with the generic message and stops the chain
func AbortError(c *gin.Context, code int) {
	c.AbortWithStatusJSON(code, Envelope{Status: StatusError, Message: GenericErrorMessage})
}
