package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/platepal/backend/internal/logger"
	"github.com/pageza/platepal/backend/internal/service"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler renders the last error attached to the context as a JSON
// error body, unless the handler already wrote a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		status, msg := Classify(c.Errors.Last().Err)
		c.JSON(status, ErrorResponse{Error: msg})
	}
}

// Classify maps an error onto the status code and message sent to clients.
func Classify(err error) (int, string) {
	var upstreamErr *service.UpstreamError

	switch {
	case errors.Is(err, service.ErrAPIKeyNotConfigured):
		return http.StatusInternalServerError, service.ErrAPIKeyNotConfigured.Error()
	case errors.As(err, &upstreamErr):
		return http.StatusInternalServerError, upstreamErr.Error()
	default:
		return http.StatusInternalServerError, InternalErrorMessage(err)
	}
}

// InternalErrorMessage formats the generic message for unexpected failures.
func InternalErrorMessage(err error) string {
	if err == nil {
		return "Internal server error: Unknown error"
	}
	return "Internal server error: " + err.Error()
}

// Recovery turns panics into the generic 500 JSON body.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	log = logger.OrNop(log)
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			log.Error("API route error",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.Stack("stack"),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: InternalErrorMessage(err)})
		}()

		c.Next()
	}
}
