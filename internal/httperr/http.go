package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Status maps an error kind to its HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err in the {success:false, message} envelope.
func WriteError(c *gin.Context, err error) {
	c.JSON(Status(err), gin.H{
		"success": false,
		"message": UserMessage(err),
	})
}

// Abort writes the error and stops the handler chain. Used by middleware.
func Abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(Status(err), gin.H{
		"success": false,
		"message": UserMessage(err),
	})
}
