package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/sugvoyage-backend/internal/dto"
	"github.com/ignatzorin/sugvoyage-backend/internal/http/handlers/common"
	"github.com/ignatzorin/sugvoyage-backend/internal/models"
	"github.com/ignatzorin/sugvoyage-backend/internal/pkg/apperror"
)

// ProfileService - чтение и обновление профилей.
type ProfileService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch models.ProfilePatch) (*models.User, error)
}

// ProfileHandler отвечает за работу с профилем.
type ProfileHandler struct {
	profiles ProfileService
}

// NewProfileHandler создаёт экземпляр.
func NewProfileHandler(profiles ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetProfile обрабатывает GET /api/auth/profile/:userId.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "userId", "User ID is required")
	if err != nil {
		common.Fail(c, err)
		return
	}

	user, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserResponse{Success: true, User: user})
}

// ListUsers обрабатывает GET /api/auth/users. Ответ - массив без обёртки.
func (h *ProfileHandler) ListUsers(c *gin.Context) {
	users, err := h.profiles.ListUsers(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// UpdateProfile обрабатывает PUT /api/auth/profile/:userId.
// Авторизованный пользователь может менять только свой профиль.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "userId", "User ID is required")
	if err != nil {
		common.Fail(c, err)
		return
	}

	if caller := common.OptionalUserID(c); caller != uuid.Nil && caller != userID {
		common.Fail(c, apperror.ErrForbidden)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, apperror.Validation("Invalid request body"))
		return
	}

	user, err := h.profiles.UpdateProfile(c.Request.Context(), userID, models.ProfilePatch{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Location:    req.Location,
		Avatar:      req.Avatar,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserResponse{Success: true, User: user})
}
