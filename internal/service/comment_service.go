package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/sugvoyage-backend/internal/models"
	"github.com/ignatzorin/sugvoyage-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sugvoyage-backend/internal/repository"
	"github.com/ignatzorin/sugvoyage-backend/internal/validation"
)

// CommentRepository описывает хранилище комментариев.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	CountByPost(ctx context.Context, postID uuid.UUID) (int, error)
	ToggleLike(ctx context.Context, id, userID uuid.UUID) (*models.LikeResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CommentService struct {
	comments CommentRepository
	users    UserRepository
}

func NewCommentService(comments CommentRepository, users UserRepository) *CommentService {
	return &CommentService{comments: comments, users: users}
}

// AddComment создаёт комментарий к посту от имени authorID.
func (s *CommentService) AddComment(ctx context.Context, postID, authorID uuid.UUID, content string) (*models.Comment, error) {
	if authorID == uuid.Nil {
		return nil, apperror.Validation("Author is required")
	}
	if err := validation.ValidateCommentContent(content); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	author, err := s.users.GetByID(ctx, authorID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, apperror.Internal(err, "Error adding comment")
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  strings.TrimSpace(content),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, apperror.ErrPostNotFound
		}
		return nil, apperror.Internal(err, "Error adding comment")
	}

	comment.Author = author.AsAuthor()
	return comment, nil
}

// ListComments возвращает комментарии поста, новые первыми.
func (s *CommentService) ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, apperror.Internal(err, "Error fetching comments")
	}
	if err := s.populate(ctx, comments); err != nil {
		return nil, apperror.Internal(err, "Error fetching comments")
	}
	return comments, nil
}

func (s *CommentService) CountComments(ctx context.Context, postID uuid.UUID) (int, error) {
	count, err := s.comments.CountByPost(ctx, postID)
	if err != nil {
		return 0, apperror.Internal(err, "Error counting comments")
	}
	return count, nil
}

func (s *CommentService) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if errors.Is(err, repository.ErrCommentNotFound) {
		return nil, apperror.ErrCommentNotFound
	}
	if err != nil {
		return nil, apperror.Internal(err, "Error fetching comment")
	}

	list := []models.Comment{*comment}
	if err := s.populate(ctx, list); err != nil {
		return nil, apperror.Internal(err, "Error fetching comment")
	}
	return &list[0], nil
}

func (s *CommentService) ToggleLike(ctx context.Context, commentID, userID uuid.UUID) (*models.LikeResult, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUserIDRequired
	}

	res, err := s.comments.ToggleLike(ctx, commentID, userID)
	if errors.Is(err, repository.ErrCommentNotFound) {
		return nil, apperror.ErrCommentNotFound
	}
	if err != nil {
		return nil, apperror.Internal(err, "Error liking comment")
	}
	return res, nil
}

// DeleteComment удаляет комментарий. Удалить можно только свой комментарий.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, callerID uuid.UUID) error {
	if callerID == uuid.Nil {
		return apperror.ErrForbidden
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if errors.Is(err, repository.ErrCommentNotFound) {
		return apperror.ErrCommentNotFound
	}
	if err != nil {
		return apperror.Internal(err, "Error deleting comment")
	}

	if callerID != comment.AuthorID {
		return apperror.ErrForbidden
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return apperror.ErrCommentNotFound
		}
		return apperror.Internal(err, "Error deleting comment")
	}
	return nil
}

func (s *CommentService) populate(ctx context.Context, comments []models.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(comments))
	for i := range comments {
		ids = append(ids, comments[i].AuthorID)
	}

	authors, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range comments {
		if u, ok := authors[comments[i].AuthorID]; ok {
			comments[i].Author = u.AsAuthor()
		}
	}
	return nil
}
