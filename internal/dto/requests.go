package dto

// SendVerificationRequest - запрос кода подтверждения.
type SendVerificationRequest struct {
	Email string `json:"email"`
}

// RegisterRequest - завершение регистрации по коду.
type RegisterRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	DisplayName      string `json:"displayName"`
	VerificationCode string `json:"verificationCode"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest - частичное обновление профиля.
// Отсутствующее поле остаётся nil и не изменяется.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio"`
	Location    *string `json:"location"`
	Avatar      *string `json:"avatar"`
}

// CreateCommentRequest - новый комментарий. Author нужен только без токена;
// при токене он должен совпадать с владельцем токена.
type CreateCommentRequest struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

// LikeRequest - тело запроса лайка. UserID учитывается только без токена.
type LikeRequest struct {
	UserID string `json:"userId"`
}

// LocationMessage - координаты пользователя из WebSocket сообщения.
type LocationMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
}
