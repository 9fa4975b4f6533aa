package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MianAhsan577/waapi-server/internal/platform/errors"
)

// RespondSuccess writes the success envelope plus any extra payload fields.
func RespondSuccess(c *gin.Context, httpStatus int, message string, fields gin.H) {
	body := gin.H{
		"status":  "success",
		"success": true,
	}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(httpStatus, body)
}

// RespondError maps the error kind to an HTTP status and writes the error
// envelope. Unknown kinds report as internal errors with a generic message.
func RespondError(c *gin.Context, err error) {
	status := StatusForError(err)
	message := "internal server error"
	if status != http.StatusInternalServerError {
		if e, ok := err.(*errors.Error); ok {
			message = e.Message
		} else if err != nil {
			message = err.Error()
		}
	}
	c.JSON(status, gin.H{
		"status":  "error",
		"success": false,
		"message": message,
	})
}

// RespondAbort is RespondError followed by aborting the handler chain.
func RespondAbort(c *gin.Context, err error) {
	RespondError(c, err)
	c.Abort()
}

// StatusForError converts the error taxonomy to HTTP status codes.
func StatusForError(err error) int {
	switch errors.KindOf(err) {
	case errors.KindValidation, errors.KindConflict:
		return http.StatusBadRequest
	case errors.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
