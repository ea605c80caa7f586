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

// CommentService - операции с комментариями.
type CommentService interface {
	AddComment(ctx context.Context, postID, authorID uuid.UUID, content string) (*models.Comment, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	CountComments(ctx context.Context, postID uuid.UUID) (int, error)
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ToggleLike(ctx context.Context, commentID, userID uuid.UUID) (*models.LikeResult, error)
	DeleteComment(ctx context.Context, commentID, callerID uuid.UUID) error
}

// CommentHandler обслуживает /api/comments.
type CommentHandler struct {
	comments CommentService
}

func NewCommentHandler(comments CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// AddComment обрабатывает POST /api/comments/posts/:postId/comments.
func (h *CommentHandler) AddComment(c *gin.Context) {
	postID, err := common.ParseUUIDParam(c, "postId", "Invalid post ID")
	if err != nil {
		common.Fail(c, err)
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, apperror.Validation("Invalid request body"))
		return
	}

	authorID, err := common.ResolveUserID(c, req.Author)
	if err != nil {
		common.Fail(c, err)
		return
	}

	comment, err := h.comments.AddComment(c.Request.Context(), postID, authorID, req.Content)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CommentResponse{Success: true, Comment: comment})
}

// ListComments обрабатывает GET /api/comments/posts/:postId/comments.
func (h *CommentHandler) ListComments(c *gin.Context) {
	postID, err := common.ParseUUIDParam(c, "postId", "Invalid post ID")
	if err != nil {
		common.Fail(c, err)
		return
	}

	comments, err := h.comments.ListComments(c.Request.Context(), postID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CommentsResponse{Success: true, Comments: comments})
}

// CountComments обрабатывает GET /api/comments/posts/:postId/comments/count.
func (h *CommentHandler) CountComments(c *gin.Context) {
	postID, err := common.ParseUUIDParam(c, "postId", "Invalid post ID")
	if err != nil {
		common.Fail(c, err)
		return
	}

	count, err := h.comments.CountComments(c.Request.Context(), postID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Success: true, Count: count})
}

// GetComment обрабатывает GET /api/comments/comments/:id.
func (h *CommentHandler) GetComment(c *gin.Context) {
	commentID, err := common.ParseUUIDParam(c, "id", "Invalid comment ID")
	if err != nil {
		common.Fail(c, err)
		return
	}

	comment, err := h.comments.GetComment(c.Request.Context(), commentID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CommentResponse{Success: true, Comment: comment})
}

// LikeComment обрабатывает POST /api/comments/comments/:id/like.
func (h *CommentHandler) LikeComment(c *gin.Context) {
	commentID, err := common.ParseUUIDParam(c, "id", "Invalid comment ID")
	if err != nil {
		common.Fail(c, err)
		return
	}

	userID, err := likeUserID(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	res, err := h.comments.ToggleLike(c.Request.Context(), commentID, userID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LikeResponse{Success: true, LikeResult: res})
}

// DeleteComment обрабатывает DELETE /api/comments/comments/:id.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	commentID, err := common.ParseUUIDParam(c, "id", "Invalid comment ID")
	if err != nil {
		common.Fail(c, err)
		return
	}

	callerID, err := common.CurrentUserID(c)
	if err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeUnauthorized, "Authorization required"))
		return
	}

	if err := h.comments.DeleteComment(c.Request.Context(), commentID, callerID); err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Comment deleted successfully"})
}
