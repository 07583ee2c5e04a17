package middleware

import (
	"errors"
	"net/http"

	"eventreward/pkg/errutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ErrorBody struct {
	Code    errutil.CoreStatus `json:"code"`
	Message string             `json:"message"`
	Details []errutil.Detail   `json:"details,omitempty"`
}

// Envelope is the body of every gateway response.
type Envelope struct {
	StatusCode int        `json:"statusCode"`
	Message    string     `json:"message"`
	Data       any        `json:"data,omitempty"`
	Error      *ErrorBody `json:"error,omitempty"`
}

// Error renders the last error attached by a handler. Causes stay in the logs.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var base errutil.BaseError
		if !errors.As(err, &base) {
			zap.L().Error("unhandled gateway error",
				zap.String("path", c.FullPath()),
				zap.String("request_id", GetRequestID(c.Request.Context())),
				zap.Error(err),
			)
			base = errutil.BaseError{Code: errutil.StatusInternal, Message: http.StatusText(http.StatusInternalServerError)}
		}

		code := base.Code.HTTPStatus()
		c.JSON(code, Envelope{
			StatusCode: code,
			Message:    base.Message,
			Error:      &ErrorBody{Code: base.Code, Message: base.Message, Details: base.Details},
		})
	}
}

// Abort attaches err for Error to render and stops the chain.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
