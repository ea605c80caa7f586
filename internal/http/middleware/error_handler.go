package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sugvoyage-backend/internal/dto"
	"github.com/ignatzorin/sugvoyage-backend/internal/logger"
	"github.com/ignatzorin/sugvoyage-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sugvoyage-backend/internal/repository/common"
)

// ErrorHandler обрабатывает ошибки, добавленные через c.Error, централизованно.
// Маскирует внутренние ошибки и возвращает {success:false, message}.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, body := ErrorPayload(err)

		entry := logger.L().WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": status,
		})
		if status >= http.StatusInternalServerError {
			entry.Error("request error")
		} else {
			entry.Debug("request rejected")
		}

		c.JSON(status, body)
	}
}

// ErrorPayload переводит ошибку в HTTP статус и тело ответа.
// Причина ошибки попадает в поле error только вне release режима.
func ErrorPayload(err error) (int, dto.ErrorResponse) {
	body := dto.ErrorResponse{Message: "Internal server error"}
	status := http.StatusInternalServerError

	if appErr, ok := apperror.As(err); ok {
		status = appErr.HTTPStatus
		body.Message = appErr.Message
		if appErr.Cause != nil && gin.Mode() != gin.ReleaseMode {
			body.Error = appErr.Cause.Error()
		}
		return status, body
	}

	if errors.Is(err, common.ErrNotFound) {
		return http.StatusNotFound, dto.ErrorResponse{Message: "Not found"}
	}

	if gin.Mode() != gin.ReleaseMode {
		body.Error = err.Error()
	}
	return status, body
}
