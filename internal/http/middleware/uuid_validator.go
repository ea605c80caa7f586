package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/sugvoyage-backend/internal/dto"
)

// UUIDValidator проверяет, что параметр с указанным именем является валидным UUID.
// message - текст ошибки для клиента, например "User ID is required".
// Использование: router.GET("/posts/:id", UUIDValidator("id", "Invalid post ID"), handler.GetPost)
func UUIDValidator(paramName, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param(paramName)); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Message: message})
			return
		}

		c.Next()
	}
}
