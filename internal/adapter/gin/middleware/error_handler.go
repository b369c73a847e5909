package middleware

import (
	"errors"
	"net/http"
	"time"

	apperrors "user-rest-service/pkg/errors"
	"user-rest-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StandardError is the JSON body of every error response.
type StandardError struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Path      string    `json:"path"`
}

// NewStandardError builds the error body for the current request.
func NewStandardError(c *gin.Context, status int, message string) StandardError {
	return StandardError{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     message,
		Path:      c.Request.URL.Path,
	}
}

// ErrorHandler renders the last error attached by a handler with c.Error.
// NotFound maps to 404, data integrity and validation failures to 400,
// and anything else to 500 without leaking the cause.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, message := classify(err)
		if status == http.StatusInternalServerError {
			logger.WithContext(c.Request.Context(), log).Error("unhandled error",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}

		c.JSON(status, NewStandardError(c, status, message))
	}
}

func classify(err error) (int, string) {
	var notFound *apperrors.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, notFound.Error()
	}

	var integrity *apperrors.DataIntegrityError
	if errors.As(err, &integrity) {
		return http.StatusBadRequest, integrity.Error()
	}

	var validation *apperrors.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, validation.Error()
	}

	return http.StatusInternalServerError, apperrors.MsgInternalError
}
