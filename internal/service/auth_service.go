package service

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/sugvoyage-backend/internal/logger"
	"github.com/ignatzorin/sugvoyage-backend/internal/models"
	"github.com/ignatzorin/sugvoyage-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sugvoyage-backend/internal/repository"
	"github.com/ignatzorin/sugvoyage-backend/internal/validation"
)

// PasswordCost - стоимость bcrypt для новых паролей.
const PasswordCost = 12

// UserRepository описывает зависимости сервисов от таблицы пользователей.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch models.ProfilePatch) (*models.User, error)
}

// Mailer доставляет код подтверждения на email.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string) error
}

// AuthService инкапсулирует регистрацию по коду, вход и работу с профилем.
type AuthService struct {
	users        UserRepository
	codes        VerificationStore
	mailer       Mailer
	tokenManager *TokenManager
	codeTTL      time.Duration

	now        func() time.Time
	newCode    func() string
	bcryptCost int

	dummyOnce sync.Once
	dummyHash []byte
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Username         string
	Email            string
	Password         string
	DisplayName      string
	VerificationCode string
}

// AuthResult возвращает итог регистрации или входа.
type AuthResult struct {
	User  *models.User
	Token string
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(users UserRepository, codes VerificationStore, mailer Mailer, tokenManager *TokenManager, codeTTL time.Duration) *AuthService {
	return &AuthService{
		users:        users,
		codes:        codes,
		mailer:       mailer,
		tokenManager: tokenManager,
		codeTTL:      codeTTL,
		now:          time.Now,
		newCode:      generateCode,
		bcryptCost:   PasswordCost,
	}
}

// RequestVerification выдаёт новый код для email и отправляет его письмом.
// Повторный запрос заменяет предыдущий код. При ошибке отправки код остаётся
// сохранённым, и клиент может запросить его повторно.
func (s *AuthService) RequestVerification(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)
	if email == "" {
		return apperror.Validation("Email is required")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return apperror.Validation(err.Error())
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return apperror.New(apperror.ErrCodeConflict, "Email already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return apperror.Internal(err, "Error sending verification")
	}

	rec := &models.VerificationRecord{
		Email:     email,
		Code:      s.newCode(),
		ExpiresAt: s.now().Add(s.codeTTL),
	}
	if err := s.codes.Save(ctx, rec); err != nil {
		return apperror.Internal(err, "Error sending verification")
	}

	if err := s.mailer.SendVerificationCode(ctx, email, rec.Code); err != nil {
		logger.L().WithFields(logrus.Fields{
			"email": email,
			"error": err.Error(),
		}).Warn("auth service: verification email not delivered")
		return apperror.Internal(err, "Failed to send email")
	}

	return nil
}

// CompleteRegistration проверяет код и создаёт пользователя.
// Код одноразовый: он удаляется до создания записи пользователя.
func (s *AuthService) CompleteRegistration(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = validation.NormalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.VerificationCode = strings.TrimSpace(in.VerificationCode)

	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		return nil, apperror.Internal(err, "Registration failed")
	}
	if exists {
		return nil, apperror.New(apperror.ErrCodeConflict, "User already exists")
	}

	rec, err := s.codes.Find(ctx, in.Email)
	if errors.Is(err, repository.ErrVerificationNotFound) {
		return nil, apperror.New(apperror.ErrCodeState, "No verification code found")
	}
	if err != nil {
		return nil, apperror.Internal(err, "Registration failed")
	}

	if rec.Code != in.VerificationCode {
		return nil, apperror.New(apperror.ErrCodeState, "Invalid verification code")
	}

	if rec.Expired(s.now()) {
		if err := s.codes.Delete(ctx, in.Email); err != nil {
			logger.L().WithError(err).Warn("auth service: failed to delete expired verification code")
		}
		return nil, apperror.New(apperror.ErrCodeState, "Verification code expired")
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, apperror.Internal(err, "Registration failed")
	}

	consumed, err := s.codes.Consume(ctx, in.Email, in.VerificationCode)
	if err != nil {
		return nil, apperror.Internal(err, "Registration failed")
	}
	if !consumed {
		return nil, apperror.New(apperror.ErrCodeState, "No verification code found")
	}

	displayName := in.DisplayName
	if displayName == "" {
		displayName = in.Username
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(passHash),
		Profile: models.Profile{
			DisplayName: displayName,
			Avatar:      models.DefaultAvatar,
		},
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "User already exists")
		}
		return nil, apperror.Internal(err, "Registration failed")
	}

	token, err := s.tokenManager.Generate(user)
	if err != nil {
		return nil, apperror.Internal(err, "Registration failed")
	}

	logger.L().WithField("user_id", user.ID).Info("auth service: user registered")

	return &AuthResult{User: user, Token: token}, nil
}

// Login проверяет учётные данные. Неизвестный email и неверный пароль
// дают одинаковую ошибку.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.Validation("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.Internal(err, "Login failed")
		}
		// Выравниваем время ответа с веткой проверки пароля.
		_ = bcrypt.CompareHashAndPassword(s.dummyPasswordHash(), []byte(password))
		return nil, apperror.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.tokenManager.Generate(user)
	if err != nil {
		return nil, apperror.Internal(err, "Login failed")
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetProfile возвращает пользователя по идентификатору.
func (s *AuthService) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, apperror.ErrUserIDRequired
	}

	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, apperror.Internal(err, "Error fetching user")
	}
	return user, nil
}

// ListUsers возвращает всех пользователей.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "Error fetching users")
	}
	return users, nil
}

// UpdateProfile применяет только переданные поля профиля.
func (s *AuthService) UpdateProfile(ctx context.Context, id uuid.UUID, patch models.ProfilePatch) (*models.User, error) {
	if id == uuid.Nil {
		return nil, apperror.ErrUserIDRequired
	}

	patch = trimPatch(patch)
	for _, check := range []error{
		validation.ValidateDisplayName(patch.DisplayName),
		validation.ValidateBio(patch.Bio),
		validation.ValidateLocation(patch.Location),
		validation.ValidateAvatar(patch.Avatar),
	} {
		if check != nil {
			return nil, apperror.Validation(check.Error())
		}
	}

	if patch.Empty() {
		return s.GetProfile(ctx, id)
	}

	user, err := s.users.UpdateProfile(ctx, id, patch)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, apperror.Internal(err, "Error updating profile")
	}
	return user, nil
}

func validateRegistration(in RegisterInput) error {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return apperror.Validation("Username, email and password are required")
	}
	if in.VerificationCode == "" {
		return apperror.Validation("Verification code is required")
	}
	for _, check := range []error{
		validation.ValidateUsername(in.Username),
		validation.ValidateEmail(in.Email),
		validation.ValidatePassword(in.Password),
		validation.ValidateDisplayName(&in.DisplayName),
	} {
		if check != nil {
			return apperror.Validation(check.Error())
		}
	}
	return nil
}

func trimPatch(p models.ProfilePatch) models.ProfilePatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	return models.ProfilePatch{
		DisplayName: trim(p.DisplayName),
		Bio:         trim(p.Bio),
		Location:    trim(p.Location),
		Avatar:      trim(p.Avatar),
	}
}

func (s *AuthService) dummyPasswordHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.bcryptCost)
	})
	return s.dummyHash
}

// generateCode возвращает шестизначный код из math/rand.
func generateCode() string {
	return strconv.Itoa(100000 + rand.Intn(900000))
}
