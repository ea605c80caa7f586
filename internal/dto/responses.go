package dto

import "github.com/ignatzorin/sugvoyage-backend/internal/models"

// ErrorResponse represents a standard error response.
// Error carries the underlying cause outside release mode.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// MessageResponse represents a success response without payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	User    models.PublicUser `json:"user"`
	Token   string            `json:"token"`
}

type UserResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
}

type PostResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Post    *models.Post `json:"post"`
}

type PostsResponse struct {
	Success bool          `json:"success"`
	Posts   []models.Post `json:"posts"`
}

// LikeResponse flattens likes and isLiked next to success.
type LikeResponse struct {
	Success bool `json:"success"`
	*models.LikeResult
}

type CommentResponse struct {
	Success bool            `json:"success"`
	Comment *models.Comment `json:"comment"`
}

type CommentsResponse struct {
	Success  bool             `json:"success"`
	Comments []models.Comment `json:"comments"`
}

type CountResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

type SpotsResponse struct {
	Success bool          `json:"success"`
	Spots   []models.Spot `json:"spots"`
}

type NearbySpotsResponse struct {
	Success bool `json:"success"`
	*models.SpotsInRadius
}

// HealthResponse describes service and database state.
type HealthResponse struct {
	Status   string          `json:"status"`
	Database *DatabaseHealth `json:"database,omitempty"`
}

type DatabaseHealth struct {
	Status          string `json:"status"`
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
	Error           string `json:"error,omitempty"`
}
