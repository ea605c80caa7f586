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

var ErrCommentNotFound = fmt.Errorf("comment: %w", common.ErrNotFound)

const commentColumns = `id, post_id, author_id, content, likes, liked_by, created_at, updated_at`

type CommentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create сохраняет комментарий. Пост должен существовать,
// иначе внешний ключ вернёт ошибку, которую отдаём как ErrPostNotFound.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, comment.PostID); err != nil {
			return fmt.Errorf("comment repository: check post %w", err)
		}
		if !exists {
			return ErrPostNotFound
		}

		query := `
			INSERT INTO comments (post_id, author_id, content)
			VALUES ($1, $2, $3)
			RETURNING ` + commentColumns
		if err := tx.GetContext(ctx, comment, query, comment.PostID, comment.AuthorID, comment.Content); err != nil {
			return fmt.Errorf("comment repository: create %w", err)
		}
		return nil
	})
}

func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	comment, err := common.GetByID[models.Comment](ctx, r.db, "comments", commentColumns, id, ErrCommentNotFound)
	if err != nil && !errors.Is(err, ErrCommentNotFound) {
		return nil, fmt.Errorf("comment repository: %w", err)
	}
	return comment, err
}

// ListByPost возвращает комментарии поста, новые первыми.
func (r *CommentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	comments := []models.Comment{}
	query := `SELECT ` + commentColumns + ` FROM comments WHERE post_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("comment repository: list by post %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) CountByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID); err != nil {
		return 0, fmt.Errorf("comment repository: count %w", err)
	}
	return count, nil
}

// ToggleLike переключает лайк пользователя на комментарии.
func (r *CommentRepository) ToggleLike(ctx context.Context, id, userID uuid.UUID) (*models.LikeResult, error) {
	var res models.LikeResult
	err := r.db.QueryRowxContext(ctx, toggleLikeQuery("comments"), id, userID).Scan(&res.Likes, &res.IsLiked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("comment repository: toggle like %w", err)
	}
	return &res, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("comment repository: delete %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrCommentNotFound
	}
	return nil
}
