package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/sugvoyage-backend/internal/dto"
	"github.com/ignatzorin/sugvoyage-backend/internal/http/handlers/common"
	"github.com/ignatzorin/sugvoyage-backend/internal/models"
	"github.com/ignatzorin/sugvoyage-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sugvoyage-backend/internal/service"
)

// PostService - операции ленты постов.
type PostService interface {
	CreatePost(ctx context.Context, in service.CreatePostInput) (*models.Post, error)
	ListFeed(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListUserPosts(ctx context.Context, authorID, viewerID uuid.UUID) ([]models.Post, error)
	ToggleLike(ctx context.Context, postID, userID uuid.UUID) (*models.LikeResult, error)
}

// PostHandler обслуживает /api/posts.
type PostHandler struct {
	posts     PostService
	maxImages int
}

func NewPostHandler(posts PostService, maxImages int) *PostHandler {
	return &PostHandler{posts: posts, maxImages: maxImages}
}

// CreatePost обрабатывает POST /api/posts (multipart/form-data).
// Автор берётся из токена; без токена из поля author.
func (h *PostHandler) CreatePost(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		common.Fail(c, apperror.Validation("Invalid form data"))
		return
	}

	authorID, err := common.ResolveUserID(c, formValue(form, "author"))
	if err != nil {
		common.Fail(c, err)
		return
	}

	in := service.CreatePostInput{
		AuthorID:     authorID,
		Content:      formValue(form, "content"),
		LocationName: formValue(form, "location[name]"),
		Category:     formValue(form, "category"),
		Visibility:   formValue(form, "visibility"),
	}
	in.Tags = append(in.Tags, form.Value["tags[]"]...)
	in.Tags = append(in.Tags, form.Value["tags"]...)

	if raw := formValue(form, "rating"); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			common.Fail(c, apperror.Validation("Rating must be between 0 and 5"))
			return
		}
		in.Rating = rating
	}

	if in.Latitude, err = parseOptionalFloat(formValue(form, "location[lat]")); err != nil {
		common.Fail(c, apperror.Validation("Invalid latitude"))
		return
	}
	if in.Longitude, err = parseOptionalFloat(formValue(form, "location[lng]")); err != nil {
		common.Fail(c, apperror.Validation("Invalid longitude"))
		return
	}

	files := form.File["images"]
	if h.maxImages > 0 && len(files) > h.maxImages {
		common.Fail(c, apperror.Validation("Too many images, at most "+strconv.Itoa(h.maxImages)+" allowed"))
		return
	}

	opened := make([]multipart.File, 0, len(files))
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, fh := range files {
		src, err := openImage(fh)
		if err != nil {
			common.Fail(c, err)
			return
		}
		opened = append(opened, src)
		in.Images = append(in.Images, service.ImageUpload{Name: fh.Filename, Content: src})
	}

	post, err := h.posts.CreatePost(c.Request.Context(), in)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.PostResponse{Success: true, Message: "Post created successfully", Post: post})
}

// ListPosts обрабатывает GET /api/posts.
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.posts.ListFeed(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PostsResponse{Success: true, Posts: posts})
}

// GetPost обрабатывает GET /api/posts/:id.
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, err := common.ParseUUIDParam(c, "id", "Invalid post ID")
	if err != nil {
		common.Fail(c, err)
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), postID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PostResponse{Success: true, Post: post})
}

// ListUserPosts обрабатывает GET /api/posts/user/:userId.
func (h *PostHandler) ListUserPosts(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "userId", "User ID is required")
	if err != nil {
		common.Fail(c, err)
		return
	}

	posts, err := h.posts.ListUserPosts(c.Request.Context(), userID, common.OptionalUserID(c))
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PostsResponse{Success: true, Posts: posts})
}

// LikePost обрабатывает POST /api/posts/:id/like.
func (h *PostHandler) LikePost(c *gin.Context) {
	postID, err := common.ParseUUIDParam(c, "id", "Invalid post ID")
	if err != nil {
		common.Fail(c, err)
		return
	}

	userID, err := likeUserID(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	res, err := h.posts.ToggleLike(c.Request.Context(), postID, userID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LikeResponse{Success: true, LikeResult: res})
}

// likeUserID берёт пользователя из токена, без токена из userId в JSON теле.
func likeUserID(c *gin.Context) (uuid.UUID, error) {
	var req dto.LikeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			return uuid.Nil, apperror.Validation("Invalid request body")
		}
	}

	userID, err := common.ResolveUserID(c, req.UserID)
	if err != nil {
		return uuid.Nil, err
	}
	if userID == uuid.Nil {
		return uuid.Nil, apperror.ErrUserIDRequired
	}
	return userID, nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

func parseOptionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
