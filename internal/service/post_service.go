package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sugvoyage-backend/internal/geo"
	"github.com/ignatzorin/sugvoyage-backend/internal/logger"
	"github.com/ignatzorin/sugvoyage-backend/internal/models"
	"github.com/ignatzorin/sugvoyage-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sugvoyage-backend/internal/repository"
	"github.com/ignatzorin/sugvoyage-backend/internal/storage"
	"github.com/ignatzorin/sugvoyage-backend/internal/validation"
)

// PostRepository описывает хранилище постов.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListPublic(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Post, error)
	IncrementViews(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ToggleLike(ctx context.Context, id, userID uuid.UUID) (*models.LikeResult, error)
}

// ImageStorage сохраняет загруженные изображения и возвращает относительный путь.
type ImageStorage interface {
	Save(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (string, int64, error)
	Delete(ctx context.Context, relativePath string) error
}

// ImageUpload - уже проверенное изображение из multipart формы.
type ImageUpload struct {
	Name    string
	Content io.Reader
}

// CreatePostInput содержит поля нового поста.
type CreatePostInput struct {
	AuthorID     uuid.UUID
	Content      string
	LocationName string
	Latitude     *float64
	Longitude    *float64
	Category     string
	Visibility   string
	Rating       int
	Tags         []string
	Images       []ImageUpload
}

// PostService реализует ленту постов.
type PostService struct {
	posts        PostRepository
	users        UserRepository
	storage      ImageStorage
	mediaBaseURL string
}

func NewPostService(posts PostRepository, users UserRepository, storage ImageStorage, mediaBaseURL string) *PostService {
	return &PostService{
		posts:        posts,
		users:        users,
		storage:      storage,
		mediaBaseURL: strings.TrimRight(mediaBaseURL, "/"),
	}
}

// CreatePost проверяет поля, сохраняет изображения и создаёт пост.
// Если запись в базу не удалась, сохранённые файлы удаляются.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	post, err := s.buildPost(in)
	if err != nil {
		return nil, err
	}

	author, err := s.users.GetByID(ctx, in.AuthorID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, apperror.Internal(err, "Error creating post")
	}

	saved := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		path, _, err := s.storage.Save(ctx, in.AuthorID, img.Name, img.Content)
		if err != nil {
			s.removeImages(saved)
			if errors.Is(err, storage.ErrFileTooLarge) {
				return nil, apperror.Validation("Image is too large")
			}
			return nil, apperror.Internal(err, "Failed to save image")
		}
		saved = append(saved, path)
	}
	post.PostMedia.Paths = saved

	if err := s.posts.Create(ctx, post); err != nil {
		s.removeImages(saved)
		return nil, apperror.Internal(err, "Error creating post")
	}

	post.Author = author.AsAuthor()
	post.ResolveMedia(s.mediaBaseURL)
	return post, nil
}

// ListFeed возвращает публичные посты, новые первыми.
func (s *PostService) ListFeed(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.ListPublic(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "Error fetching posts")
	}
	if err := s.decorate(ctx, posts); err != nil {
		return nil, apperror.Internal(err, "Error fetching posts")
	}
	return posts, nil
}

// GetPost возвращает пост и засчитывает просмотр.
func (s *PostService) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.posts.IncrementViews(ctx, id)
	if errors.Is(err, repository.ErrPostNotFound) {
		return nil, apperror.ErrPostNotFound
	}
	if err != nil {
		return nil, apperror.Internal(err, "Error fetching post")
	}

	list := []models.Post{*post}
	if err := s.decorate(ctx, list); err != nil {
		return nil, apperror.Internal(err, "Error fetching post")
	}
	return &list[0], nil
}

// ListUserPosts возвращает посты автора. Приватные видит только сам автор.
func (s *PostService) ListUserPosts(ctx context.Context, authorID, viewerID uuid.UUID) ([]models.Post, error) {
	if authorID == uuid.Nil {
		return nil, apperror.ErrUserIDRequired
	}

	posts, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, apperror.Internal(err, "Error fetching posts")
	}

	if viewerID != authorID {
		visible := posts[:0]
		for _, p := range posts {
			if p.IsPublic() {
				visible = append(visible, p)
			}
		}
		posts = visible
	}

	if err := s.decorate(ctx, posts); err != nil {
		return nil, apperror.Internal(err, "Error fetching posts")
	}
	return posts, nil
}

// ToggleLike ставит или снимает лайк пользователя.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID uuid.UUID) (*models.LikeResult, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUserIDRequired
	}

	res, err := s.posts.ToggleLike(ctx, postID, userID)
	if errors.Is(err, repository.ErrPostNotFound) {
		return nil, apperror.ErrPostNotFound
	}
	if err != nil {
		return nil, apperror.Internal(err, "Error liking post")
	}
	return res, nil
}

func (s *PostService) buildPost(in CreatePostInput) (*models.Post, error) {
	if in.AuthorID == uuid.Nil {
		return nil, apperror.Validation("Author is required")
	}
	if err := validation.ValidatePostContent(in.Content); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidatePlaceName(in.LocationName); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, apperror.Validation("Both latitude and longitude are required")
	}
	if in.Latitude != nil {
		point := geo.Point{Latitude: *in.Latitude, Longitude: *in.Longitude}
		if !point.Valid() || !geo.CebuBounds.Contains(point) {
			return nil, apperror.Validation("Location must be within Cebu")
		}
	}

	category := strings.ToLower(strings.TrimSpace(in.Category))
	if category == "" {
		category = models.CategoryOther
	}
	if _, ok := models.ValidCategories[category]; !ok {
		return nil, apperror.Validation("Invalid category")
	}

	visibility := strings.ToLower(strings.TrimSpace(in.Visibility))
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if visibility != models.VisibilityPublic && visibility != models.VisibilityPrivate {
		return nil, apperror.Validation("Invalid visibility")
	}

	if in.Rating < 0 || in.Rating > models.MaxRating {
		return nil, apperror.Validation("Rating must be between 0 and 5")
	}

	tags, err := validation.NormalizeTags(in.Tags)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	return &models.Post{
		AuthorID: in.AuthorID,
		Content:  strings.TrimSpace(in.Content),
		PostLocation: models.PostLocation{
			Name:      strings.TrimSpace(in.LocationName),
			Latitude:  in.Latitude,
			Longitude: in.Longitude,
		},
		Category:   category,
		Tags:       tags,
		Visibility: visibility,
		Rating:     in.Rating,
	}, nil
}

// decorate подставляет авторов и ссылки на изображения.
func (s *PostService) decorate(ctx context.Context, posts []models.Post) error {
	ids := make([]uuid.UUID, 0, len(posts))
	for i := range posts {
		ids = append(ids, posts[i].AuthorID)
	}

	authors, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for i := range posts {
		if u, ok := authors[posts[i].AuthorID]; ok {
			posts[i].Author = u.AsAuthor()
		}
		posts[i].ResolveMedia(s.mediaBaseURL)
	}
	return nil
}

func (s *PostService) removeImages(paths []string) {
	for _, p := range paths {
		if err := s.storage.Delete(context.Background(), p); err != nil {
			logger.L().WithFields(logrus.Fields{
				"path":  p,
				"error": err.Error(),
			}).Warn("post service: failed to remove orphaned image")
		}
	}
}
