package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/sugvoyage-backend/internal/models"
	"github.com/ignatzorin/sugvoyage-backend/internal/repository/common"
)

var ErrPostNotFound = fmt.Errorf("post: %w", common.ErrNotFound)

const postColumns = `id, author_id, content, location_name, location_latitude, location_longitude,
	category, tags, visibility, rating, media_images, likes, liked_by, shares, views, created_at, updated_at`

// PostRepository отвечает за таблицу posts.
type PostRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create сохраняет пост. Счётчики стартуют с нуля.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.PostMedia.Paths == nil {
		post.PostMedia.Paths = []string{}
	}

	query := `
		INSERT INTO posts (author_id, content, location_name, location_latitude, location_longitude,
			category, tags, visibility, rating, media_images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + postColumns

	err := r.db.GetContext(ctx, post, query,
		post.AuthorID, post.Content, post.PostLocation.Name, post.PostLocation.Latitude, post.PostLocation.Longitude,
		post.Category, post.Tags, post.Visibility, post.Rating, post.PostMedia.Paths,
	)
	if err != nil {
		return fmt.Errorf("post repository: create %w", err)
	}
	return nil
}

// GetByID возвращает пост по идентификатору.
func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := common.GetByID[models.Post](ctx, r.db, "posts", postColumns, id, ErrPostNotFound)
	if err != nil && !errors.Is(err, ErrPostNotFound) {
		return nil, fmt.Errorf("post repository: %w", err)
	}
	return post, err
}

// ListPublic возвращает публичную ленту, новые посты первыми.
func (r *PostRepository) ListPublic(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	query := `SELECT ` + postColumns + ` FROM posts WHERE visibility = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &posts, query, models.VisibilityPublic); err != nil {
		return nil, fmt.Errorf("post repository: list public %w", err)
	}
	return posts, nil
}

// ListByAuthor возвращает все посты пользователя, включая приватные.
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Post, error) {
	posts := []models.Post{}
	query := `SELECT ` + postColumns + ` FROM posts WHERE author_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &posts, query, authorID); err != nil {
		return nil, fmt.Errorf("post repository: list by author %w", err)
	}
	return posts, nil
}

// IncrementViews увеличивает счётчик просмотров и возвращает обновлённый пост.
func (r *PostRepository) IncrementViews(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	query := `UPDATE posts SET views = views + 1 WHERE id = $1 RETURNING ` + postColumns
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("post repository: increment views %w", err)
	}
	return &post, nil
}

// ToggleLike ставит или снимает лайк пользователя одним UPDATE.
// Блокировка строки упорядочивает конкурентные переключения,
// поэтому likes всегда равно длине liked_by.
func (r *PostRepository) ToggleLike(ctx context.Context, id, userID uuid.UUID) (*models.LikeResult, error) {
	var res models.LikeResult
	err := r.db.QueryRowxContext(ctx, toggleLikeQuery("posts"), id, userID).Scan(&res.Likes, &res.IsLiked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("post repository: toggle like %w", err)
	}
	return &res, nil
}

// toggleLikeQuery строит переключение лайка для таблицы с колонками likes и liked_by.
// Выражения SET видят строку до изменения, RETURNING видит результат.
func toggleLikeQuery(table string) string {
	return `
		UPDATE ` + table + `
		SET liked_by = CASE WHEN $2::uuid = ANY(liked_by)
				THEN array_remove(liked_by, $2::uuid)
				ELSE array_append(liked_by, $2::uuid) END,
			likes = CASE WHEN $2::uuid = ANY(liked_by) THEN likes - 1 ELSE likes + 1 END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING likes, $2::uuid = ANY(liked_by)
	`
}
