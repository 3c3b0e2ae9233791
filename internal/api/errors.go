package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mescon/Composelab/internal/logger"
)

// Messages sent to clients in place of the underlying error.
const (
	ErrMsgInvalidRequest = "Invalid request"
	ErrMsgInternalError  = "Internal server error"
	errMsgNoScheduler    = "Scheduler not available"
	errMsgNoEndpoint     = "API endpoint not found"
	errMsgNoLogFile      = "Log file not found"
)

// apiError is the body of every failed API request.
type apiError struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// abortWithError stops the handler chain with status and msg. cause stays
// server side: it is logged with the request ID and never sent.
func abortWithError(c *gin.Context, status int, msg string, cause error) {
	if cause != nil {
		logger.Debugf("request_id=%s %s %s: %d %s: %v",
			c.GetString("request_id"), c.Request.Method, c.Request.URL.Path, status, msg, cause)
	}
	c.AbortWithStatusJSON(status, apiError{Error: msg})
}

// abortInvalid rejects input whose error text is meant for the user, such
// as a cron expression that does not parse.
func abortInvalid(c *gin.Context, err error) {
	abortWithError(c, http.StatusBadRequest, err.Error(), nil)
}
