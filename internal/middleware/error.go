package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/validation"
	"go.uber.org/zap"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Ref    any                 `json:"ref,omitempty"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// NewErrorResponse converts err into its response body.
func NewErrorResponse(err error) ErrorResponse {
	e := apperr.From(err)
	resp := ErrorResponse{Error: e.Message, Code: e.Code, Ref: e.Ref}

	var fe *validation.FieldErrors
	if errors.As(err, &fe) {
		resp.Fields = fe.Fields
	} else if e.Field != "" {
		resp.Fields = map[string][]string{e.Field: {e.Message}}
	}
	return resp
}

// ErrorHandler renders the last error pushed with c.Error when the handler did
// not write a response, and turns panics into 500s.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logging.L.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, NewErrorResponse(errors.New("panic")))
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := apperr.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			logging.L.Error("request failed",
				zap.Error(err),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
			)
		}
		c.JSON(status, NewErrorResponse(err))
	}
}
