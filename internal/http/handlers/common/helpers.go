package common

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/sugvoyage-backend/internal/http/middleware"
	"github.com/ignatzorin/sugvoyage-backend/internal/pkg/apperror"
)

// ErrUserNotInContext is returned when the request is anonymous.
var ErrUserNotInContext = errors.New("user not found in context")

// CurrentUserID extracts the authenticated user ID from Gin context.
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, ErrUserNotInContext
	}

	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrUserNotInContext
	}

	return userID, nil
}

// OptionalUserID returns the authenticated user ID or uuid.Nil.
func OptionalUserID(c *gin.Context) uuid.UUID {
	id, _ := CurrentUserID(c)
	return id
}

// ResolveUserID returns the token's user when the request is authenticated.
// An explicit id that differs from the token is rejected. Anonymous requests
// use the explicit id from the body; uuid.Nil when it is absent.
func ResolveUserID(c *gin.Context, explicit string) (uuid.UUID, error) {
	var id uuid.UUID
	if explicit != "" {
		parsed, err := uuid.Parse(explicit)
		if err != nil {
			return uuid.Nil, apperror.Validation("Invalid user ID")
		}
		id = parsed
	}

	if tokenID := OptionalUserID(c); tokenID != uuid.Nil {
		if id != uuid.Nil && id != tokenID {
			return uuid.Nil, apperror.ErrForbidden
		}
		return tokenID, nil
	}
	return id, nil
}

// ParseUUIDParam parses UUID from URL parameter.
// Malformed values are reported with the given client message.
func ParseUUIDParam(c *gin.Context, paramName, message string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(c.Param(paramName))
	if err != nil {
		return uuid.Nil, apperror.Validation(message)
	}
	return parsed, nil
}

// Fail hands the error to middleware.ErrorHandler and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseFloatQuery reads a float query parameter. ok is false when the
// parameter is missing or malformed.
func ParseFloatQuery(c *gin.Context, key string) (value float64, ok bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
