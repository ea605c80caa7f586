package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Категории мест.
const (
	CategoryFood       = "food"
	CategoryAdventure  = "adventure"
	CategoryCulture    = "culture"
	CategoryBeach      = "beach"
	CategoryHistorical = "historical"
	CategoryShopping   = "shopping"
	CategoryOther      = "other"
)

// ValidCategories список допустимых категорий.
var ValidCategories = map[string]struct{}{
	CategoryFood:       {},
	CategoryAdventure:  {},
	CategoryCulture:    {},
	CategoryBeach:      {},
	CategoryHistorical: {},
	CategoryShopping:   {},
	CategoryOther:      {},
}

// Видимость поста.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// MaxRating - максимальная оценка места в посте.
const MaxRating = 5

// Post - публикация в ленте о посещённом месте.
type Post struct {
	ID             uuid.UUID `db:"id" json:"_id"`
	AuthorID       uuid.UUID `db:"author_id" json:"-"`
	Author         *Author   `db:"-" json:"author"`
	Content        string    `db:"content" json:"content"`
	PostLocation   `json:"location"`
	Category       string         `db:"category" json:"category"`
	Tags           pq.StringArray `db:"tags" json:"tags"`
	Visibility     string         `db:"visibility" json:"visibility"`
	Rating         int            `db:"rating" json:"rating"`
	PostMedia      `json:"media"`
	PostEngagement `json:"engagement"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// PostLocation - название места и необязательные координаты.
type PostLocation struct {
	Name      string   `db:"location_name" json:"name"`
	Latitude  *float64 `db:"location_latitude" json:"latitude,omitempty"`
	Longitude *float64 `db:"location_longitude" json:"longitude,omitempty"`
}

// PostMedia хранит относительные пути загруженных изображений.
// Images заполняется из Paths при выдаче наружу.
type PostMedia struct {
	Paths  pq.StringArray `db:"media_images" json:"-"`
	Images []MediaImage   `db:"-" json:"images"`
}

// MediaImage - ссылка на изображение в ответе API.
type MediaImage struct {
	URL string `json:"url"`
}

// PostEngagement - счётчики и список лайкнувших.
// Инвариант: Likes == len(LikedBy).
type PostEngagement struct {
	Likes   int            `db:"likes" json:"likes"`
	LikedBy pq.StringArray `db:"liked_by" json:"likedBy"`
	Shares  int            `db:"shares" json:"shares"`
	Views   int            `db:"views" json:"views"`
}

// IsPublic сообщает, виден ли пост в общей ленте.
func (p *Post) IsPublic() bool {
	return p.Visibility == VisibilityPublic
}

// ResolveMedia заполняет Images по сохранённым путям.
func (p *Post) ResolveMedia(baseURL string) {
	p.PostMedia.Images = make([]MediaImage, 0, len(p.PostMedia.Paths))
	for _, path := range p.PostMedia.Paths {
		p.PostMedia.Images = append(p.PostMedia.Images, MediaImage{URL: baseURL + "/" + path})
	}
}

// LikeResult - итог переключения лайка.
type LikeResult struct {
	Likes   int  `json:"likes"`
	IsLiked bool `json:"isLiked"`
}
