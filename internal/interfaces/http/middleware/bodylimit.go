package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/keyip-molkit/pkg/errors"
	"github.com/turtacn/keyip-molkit/pkg/types/common"
)

// BodyLimit caps request bodies at limit bytes.  Reads beyond the limit fail
// and the handler reports them as a bad request.  A limit <= 0 disables it.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			if c.Request.ContentLength > limit {
				abortWithError(c, http.StatusRequestEntityTooLarge, string(errors.ErrCodeBadRequest), "request body too large")
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	resp := common.NewErrorResponse(code, message)
	resp.RequestID = GetRequestID(c)
	c.AbortWithStatusJSON(status, resp)
}

//Personal.AI order the ending
