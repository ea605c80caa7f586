package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/sugvoyage-backend/internal/dto"
	"github.com/ignatzorin/sugvoyage-backend/internal/http/handlers/common"
	"github.com/ignatzorin/sugvoyage-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sugvoyage-backend/internal/service"
)

// Authenticator - операции регистрации и входа.
type Authenticator interface {
	RequestVerification(ctx context.Context, email string) error
	CompleteRegistration(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
}

// AuthHandler предоставляет HTTP слой для регистрации и логина.
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SendVerification обрабатывает POST /api/auth/send-verification.
func (h *AuthHandler) SendVerification(c *gin.Context) {
	var req dto.SendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, apperror.Validation("Email is required"))
		return
	}

	if err := h.auth.RequestVerification(c.Request.Context(), req.Email); err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Verification code sent"})
}

// Register обрабатывает POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, apperror.Validation("Invalid request body"))
		return
	}

	result, err := h.auth.CompleteRegistration(c.Request.Context(), service.RegisterInput{
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		DisplayName:      req.DisplayName,
		VerificationCode: req.VerificationCode,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{
		Success: true,
		Message: "User registered successfully",
		User:    result.User.Public(),
		Token:   result.Token,
	})
}

// Login обрабатывает POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, apperror.Validation("Email and password are required"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		Success: true,
		Message: "Login successful",
		User:    result.User.Public(),
		Token:   result.Token,
	})
}
