// Package handlers implements the molkit HTTP endpoints on gin.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/keyip-molkit/internal/interfaces/http/middleware"
	"github.com/turtacn/keyip-molkit/pkg/errors"
	"github.com/turtacn/keyip-molkit/pkg/types/common"
)

// respond writes data in the success envelope.
func respond[T any](c *gin.Context, status int, data T) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = middleware.GetRequestID(c)
	c.JSON(status, resp)
}

// writeAppError maps err to its HTTP status and writes the error envelope.
// Server-side failures are masked with the code's default message; format
// errors carry the offending line in details.
func writeAppError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown || code == errors.CodeOK {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)

	message := err.Error()
	if status >= http.StatusInternalServerError && code != errors.ErrCodeHookNotConfigured {
		message = errors.DefaultMessageForCode(code)
	}

	resp := common.NewErrorResponse(string(code), message)
	resp.RequestID = middleware.GetRequestID(c)
	if fe, ok := errors.AsFormatError(err); ok && fe.Line > 0 {
		resp.Error.Details = map[string]interface{}{"line": fe.Line}
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// bindJSON decodes the request body into dst, writing a 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeAppError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

//Personal.AI order the ending
