package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Result{Code: CodeSuccess, Message: defaultSuccessMessage, Data: data})
}

func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	if message == "" {
		message = defaultSuccessMessage
	}
	c.JSON(http.StatusOK, Result{Code: CodeSuccess, Message: message, Data: data})
}

// SuccessWithTimestamp stamps the envelope with unix milliseconds, for
// endpoints whose consumers want a server-side freshness marker.
func SuccessWithTimestamp(c *gin.Context, data interface{}) {
	ts := time.Now().UnixMilli()
	c.JSON(http.StatusOK, Result{Code: CodeSuccess, Message: defaultSuccessMessage, Data: data, Timestamp: &ts})
}

// Fail responds with the given HTTP status and the same code in the envelope.
func Fail(c *gin.Context, status int, message string) {
	if message == "" {
		message = defaultFailureMessage
	}
	c.JSON(status, Result{Code: status, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Fail(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message)
}

func TooManyRequests(c *gin.Context, message string) {
	Fail(c, http.StatusTooManyRequests, message)
}

func InternalError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, message)
}
