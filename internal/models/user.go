package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultAvatar ставится новым пользователям, пока они не выбрали свой.
const DefaultAvatar = "👤"

// User описывает зарегистрированного путешественника.
// Хеш пароля никогда не сериализуется в JSON.
type User struct {
	ID           uuid.UUID `db:"id" json:"_id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Profile      `json:"profile"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Profile описывает публичный профиль, хранится в колонках profile_* таблицы users.
type Profile struct {
	DisplayName string `db:"profile_display_name" json:"displayName"`
	Avatar      string `db:"profile_avatar" json:"avatar"`
	Bio         string `db:"profile_bio" json:"bio"`
	Location    string `db:"profile_location" json:"location"`
}

// ProfilePatch содержит поля частичного обновления профиля.
// nil означает, что поле не передавалось и должно остаться прежним.
type ProfilePatch struct {
	DisplayName *string
	Bio         *string
	Location    *string
	Avatar      *string
}

// Empty сообщает, что в патче нет ни одного поля.
func (p ProfilePatch) Empty() bool {
	return p.DisplayName == nil && p.Bio == nil && p.Location == nil && p.Avatar == nil
}

// PublicUser - данные пользователя, которые возвращаются после регистрации и входа.
type PublicUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Profile  Profile   `json:"profile"`
}

// Public возвращает публичное представление пользователя.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Profile:  u.Profile,
	}
}

// Author - краткая информация об авторе поста или комментария.
type Author struct {
	ID       uuid.UUID `json:"_id"`
	Username string    `json:"username"`
	Profile  Profile   `json:"profile"`
}

// AsAuthor возвращает краткую карточку пользователя.
func (u *User) AsAuthor() *Author {
	return &Author{ID: u.ID, Username: u.Username, Profile: u.Profile}
}
