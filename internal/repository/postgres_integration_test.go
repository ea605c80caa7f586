//go:build integration

package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/sugvoyage-backend/internal/db"
	"github.com/ignatzorin/sugvoyage-backend/internal/models"
)

// Запуск: TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/
func newIntegrationDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	conn, err := db.NewPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.RunMigrations(ctx, conn, "../../migrations"))
	return conn
}

func createIntegrationUser(t *testing.T, users *UserRepository) *models.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	u := &models.User{
		Username:     "it_" + suffix,
		Email:        "it_" + suffix + "@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestPostRepository_ConcurrentToggleKeepsLikesInSync(t *testing.T) {
	conn := newIntegrationDB(t)
	ctx := context.Background()
	users := NewUserRepository(conn)
	posts := NewPostRepository(conn)

	author := createIntegrationUser(t, users)
	post := &models.Post{AuthorID: author.ID, Content: "Kawasan falls", Category: models.CategoryOther, Visibility: models.VisibilityPublic}
	require.NoError(t, posts.Create(ctx, post))

	likers := make([]uuid.UUID, 20)
	for i := range likers {
		likers[i] = uuid.New()
	}

	// Каждый лайкает дважды, половина ещё раз: итог равен числу нечётных переключений.
	var wg sync.WaitGroup
	for i, id := range likers {
		toggles := 2
		if i%2 == 0 {
			toggles = 3
		}
		for n := 0; n < toggles; n++ {
			wg.Add(1)
			go func(userID uuid.UUID) {
				defer wg.Done()
				_, err := posts.ToggleLike(ctx, post.ID, userID)
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	stored, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, len(stored.LikedBy), stored.Likes)
	assert.Equal(t, 10, stored.Likes)

	_, err = posts.ToggleLike(ctx, uuid.New(), likers[0])
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestVerificationRepository_PurgeKeepsRecentlyExpired(t *testing.T) {
	conn := newIntegrationDB(t)
	ctx := context.Background()
	repo := NewVerificationRepository(conn)
	now := time.Now()

	recent := &models.VerificationRecord{Email: "recent_" + uuid.NewString()[:8] + "@example.com", Code: "111111", ExpiresAt: now.Add(-time.Hour)}
	stale := &models.VerificationRecord{Email: "stale_" + uuid.NewString()[:8] + "@example.com", Code: "222222", ExpiresAt: now.Add(-models.VerificationRetention - time.Hour)}
	require.NoError(t, repo.Save(ctx, recent))
	require.NoError(t, repo.Save(ctx, stale))

	removed, err := repo.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(1))

	found, err := repo.Find(ctx, recent.Email)
	require.NoError(t, err)
	assert.True(t, found.Expired(now))

	_, err = repo.Find(ctx, stale.Email)
	assert.ErrorIs(t, err, ErrVerificationNotFound)

	require.NoError(t, repo.Delete(ctx, recent.Email))
}
