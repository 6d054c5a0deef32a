package response

import (
	"errors"
	"net/http"

	"garagehub/internal/shared/apperror"
	"garagehub/pkg/logger"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// StatusFor maps an error from the parking core onto an HTTP status
func StatusFor(err error) int {
	code, _ := apperror.CodeOf(err)
	switch code {
	case apperror.CodeMissingArgument, apperror.CodeInvalidEvent:
		return http.StatusBadRequest
	}

	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindInvalid:
		return http.StatusUnprocessableEntity
	case apperror.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err using the typed code when there is one. Untyped
// errors are logged and reported without their details.
func RespondError(c *gin.Context, message string, err error) {
	status := StatusFor(err)

	if errors.Is(err, apperror.ErrTransientConflict) {
		c.Header("Retry-After", "1")
	}

	detail := ErrorDetail{Code: "INTERNAL_ERROR", Detail: "internal server error"}
	if code, ok := apperror.CodeOf(err); ok {
		detail = ErrorDetail{Code: string(code), Detail: err.Error()}
	} else {
		logger.FromContext(c.Request.Context()).LogHTTPError(c, err, status)
	}

	RespondJSON(c, "error", status, message, nil, detail)
}
