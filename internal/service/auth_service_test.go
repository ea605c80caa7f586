package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/sugvoyage-backend/internal/models"
	"github.com/ignatzorin/sugvoyage-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sugvoyage-backend/internal/repository"
)

type authFixture struct {
	svc    *AuthService
	users  *mockUserRepository
	mailer *mockMailer
	codes  *MemoryVerificationStore
	tokens *TokenManager
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	cache := NewCacheService()
	t.Cleanup(cache.Close)

	f := &authFixture{
		users:  newMockUserRepository(),
		mailer: newMockMailer(),
		codes:  NewMemoryVerificationStore(cache),
		tokens: NewTokenManager("test-secret", time.Hour),
	}
	f.svc = NewAuthService(f.users, f.codes, f.mailer, f.tokens, 10*time.Minute)
	f.svc.bcryptCost = bcrypt.MinCost
	return f
}

func registerInput(code string) RegisterInput {
	return RegisterInput{
		Username:         "maria_travels",
		Email:            "maria@example.com",
		Password:         "secret123",
		DisplayName:      "Maria",
		VerificationCode: code,
	}
}

func requireAppError(t *testing.T, err error, code apperror.ErrorCode, message string) {
	t.Helper()
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, message, appErr.Message)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestVerification(ctx, "  Maria@Example.com "))
	code := f.mailer.lastCode("maria@example.com")
	require.Len(t, code, 6)

	res, err := f.svc.CompleteRegistration(ctx, registerInput(code))
	require.NoError(t, err)
	assert.Equal(t, "maria_travels", res.User.Username)
	assert.Equal(t, "Maria", res.User.DisplayName)
	assert.Equal(t, models.DefaultAvatar, res.User.Avatar)
	assert.NotEqual(t, "secret123", res.User.PasswordHash)

	userID, err := f.tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, userID)

	// Код одноразовый.
	_, err = f.codes.Find(ctx, "maria@example.com")
	assert.ErrorIs(t, err, repository.ErrVerificationNotFound)

	login, err := f.svc.Login(ctx, "MARIA@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
	assert.NotEmpty(t, login.Token)
}

func TestAuthService_DisplayNameDefaultsToUsername(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestVerification(ctx, "maria@example.com"))
	in := registerInput(f.mailer.lastCode("maria@example.com"))
	in.DisplayName = "   "

	res, err := f.svc.CompleteRegistration(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "maria_travels", res.User.DisplayName)
}

func TestAuthService_RegisterRequiresIssuedCode(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.CompleteRegistration(context.Background(), registerInput("123456"))
	requireAppError(t, err, apperror.ErrCodeState, "No verification code found")
}

func TestAuthService_WrongCodeKeepsRecord(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.svc.newCode = func() string { return "111111" }

	require.NoError(t, f.svc.RequestVerification(ctx, "maria@example.com"))

	_, err := f.svc.CompleteRegistration(ctx, registerInput("222222"))
	requireAppError(t, err, apperror.ErrCodeState, "Invalid verification code")

	_, err = f.svc.CompleteRegistration(ctx, registerInput("111111"))
	require.NoError(t, err)
}

func TestAuthService_ExpiredCodeIsRemoved(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestVerification(ctx, "maria@example.com"))
	code := f.mailer.lastCode("maria@example.com")

	f.svc.now = func() time.Time { return time.Now().Add(11 * time.Minute) }

	_, err := f.svc.CompleteRegistration(ctx, registerInput(code))
	requireAppError(t, err, apperror.ErrCodeState, "Verification code expired")

	_, err = f.svc.CompleteRegistration(ctx, registerInput(code))
	requireAppError(t, err, apperror.ErrCodeState, "No verification code found")
}

func TestAuthService_ResendReplacesCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	codes := []string{"111111", "222222"}
	f.svc.newCode = func() string {
		c := codes[0]
		codes = codes[1:]
		return c
	}

	require.NoError(t, f.svc.RequestVerification(ctx, "maria@example.com"))
	require.NoError(t, f.svc.RequestVerification(ctx, "maria@example.com"))

	_, err := f.svc.CompleteRegistration(ctx, registerInput("111111"))
	requireAppError(t, err, apperror.ErrCodeState, "Invalid verification code")

	_, err = f.svc.CompleteRegistration(ctx, registerInput("222222"))
	require.NoError(t, err)
}

func TestAuthService_RegisterDuplicateUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	existing := f.users.addUser("maria_travels")

	in := registerInput("123456")
	in.Email = "other@example.com"
	_, err := f.svc.CompleteRegistration(ctx, in)
	requireAppError(t, err, apperror.ErrCodeConflict, "User already exists")

	err = f.svc.RequestVerification(ctx, existing.Email)
	requireAppError(t, err, apperror.ErrCodeConflict, "Email already registered")
}

func TestAuthService_RegisterValidation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		msg    string
	}{
		{"missing password", func(in *RegisterInput) { in.Password = "" }, "Username, email and password are required"},
		{"missing code", func(in *RegisterInput) { in.VerificationCode = "" }, "Verification code is required"},
		{"short password", func(in *RegisterInput) { in.Password = "12345" }, "Password must be at least 6 characters"},
		{"bad email", func(in *RegisterInput) { in.Email = "maria" }, "Invalid email format"},
		{"bad username", func(in *RegisterInput) { in.Username = "maria travels" }, "Username may contain only letters, digits, dots and underscores"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := registerInput("123456")
			tt.mutate(&in)
			_, err := f.svc.CompleteRegistration(ctx, in)
			requireAppError(t, err, apperror.ErrCodeValidation, tt.msg)
		})
	}
}

func TestAuthService_MailFailureKeepsCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.svc.newCode = func() string { return "424242" }
	f.mailer.err = errors.New("smtp down")

	err := f.svc.RequestVerification(ctx, "maria@example.com")
	requireAppError(t, err, apperror.ErrCodeInternal, "Failed to send email")

	rec, err := f.codes.Find(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, "424242", rec.Code)
}

func TestAuthService_RequestVerificationValidation(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.RequestVerification(context.Background(), "  ")
	requireAppError(t, err, apperror.ErrCodeValidation, "Email is required")

	err = f.svc.RequestVerification(context.Background(), "not-an-email")
	requireAppError(t, err, apperror.ErrCodeValidation, "Invalid email format")
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestVerification(ctx, "maria@example.com"))
	_, err := f.svc.CompleteRegistration(ctx, registerInput(f.mailer.lastCode("maria@example.com")))
	require.NoError(t, err)

	_, wrongPassword := f.svc.Login(ctx, "maria@example.com", "wrong-password")
	_, unknownEmail := f.svc.Login(ctx, "ghost@example.com", "secret123")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	requireAppError(t, wrongPassword, apperror.ErrCodeUnauthorized, "Invalid credentials")

	_, err = f.svc.Login(ctx, "", "")
	requireAppError(t, err, apperror.ErrCodeValidation, "Email and password are required")
}

func TestAuthService_UpdateProfileIsPartial(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.users.addUser("juan")

	bio := "  Island hopper  "
	updated, err := f.svc.UpdateProfile(ctx, user.ID, models.ProfilePatch{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Island hopper", updated.Bio)
	assert.Equal(t, "juan", updated.DisplayName)
	assert.Equal(t, models.DefaultAvatar, updated.Avatar)

	unchanged, err := f.svc.UpdateProfile(ctx, user.ID, models.ProfilePatch{})
	require.NoError(t, err)
	assert.Equal(t, "Island hopper", unchanged.Bio)
}

func TestAuthService_ProfileErrors(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetProfile(ctx, uuid.Nil)
	assert.Equal(t, apperror.ErrUserIDRequired, err)

	_, err = f.svc.GetProfile(ctx, f.users.addUser("ana").ID)
	require.NoError(t, err)

	name := "Ghost"
	_, err = f.svc.UpdateProfile(ctx, uuid.New(), models.ProfilePatch{DisplayName: &name})
	assert.True(t, apperror.IsNotFound(err))
}
