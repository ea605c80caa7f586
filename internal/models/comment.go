package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Comment - комментарий к посту.
type Comment struct {
	ID                uuid.UUID `db:"id" json:"_id"`
	PostID            uuid.UUID `db:"post_id" json:"post"`
	AuthorID          uuid.UUID `db:"author_id" json:"-"`
	Author            *Author   `db:"-" json:"author"`
	Content           string    `db:"content" json:"content"`
	CommentEngagement `json:"engagement"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// CommentEngagement - лайки комментария.
type CommentEngagement struct {
	Likes   int            `db:"likes" json:"likes"`
	LikedBy pq.StringArray `db:"liked_by" json:"likedBy"`
}
