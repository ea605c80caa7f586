package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignatzorin/sugvoyage-backend/internal/models"
	"github.com/ignatzorin/sugvoyage-backend/internal/repository"
	"github.com/ignatzorin/sugvoyage-backend/internal/storage"
)

// mockUserRepository реализует UserRepository в памяти.
type mockUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[uuid.UUID]*models.User)}
}

func (m *mockUserRepository) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrUserExists
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uuid.UUID]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *mockUserRepository) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) List(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepository) UpdateProfile(_ context.Context, id uuid.UUID, patch models.ProfilePatch) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if patch.DisplayName != nil {
		u.DisplayName = *patch.DisplayName
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.Location != nil {
		u.Location = *patch.Location
	}
	if patch.Avatar != nil {
		u.Avatar = *patch.Avatar
	}
	cp := *u
	return &cp, nil
}

// addUser кладёт готового пользователя в репозиторий.
func (m *mockUserRepository) addUser(username string) *models.User {
	u := &models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Profile:  models.Profile{DisplayName: username, Avatar: models.DefaultAvatar},
	}
	m.mu.Lock()
	m.users[u.ID] = u
	m.mu.Unlock()
	return u
}

// mockMailer запоминает отправленные коды.
type mockMailer struct {
	mu   sync.Mutex
	sent map[string]string
	err  error
}

func newMockMailer() *mockMailer {
	return &mockMailer{sent: make(map[string]string)}
}

func (m *mockMailer) SendVerificationCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent[to] = code
	return nil
}

func (m *mockMailer) lastCode(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[to]
}

// mockPostRepository реализует PostRepository в памяти.
type mockPostRepository struct {
	mu        sync.Mutex
	posts     map[uuid.UUID]*models.Post
	createErr error
}

func newMockPostRepository() *mockPostRepository {
	return &mockPostRepository{posts: make(map[uuid.UUID]*models.Post)}
}

func (m *mockPostRepository) Create(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	post.ID = uuid.New()
	post.CreatedAt = time.Now().Add(time.Duration(len(m.posts)) * time.Millisecond)
	post.UpdatedAt = post.CreatedAt
	if post.LikedBy == nil {
		post.LikedBy = pq.StringArray{}
	}
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *mockPostRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrPostNotFound
}

func (m *mockPostRepository) sorted(keep func(*models.Post) bool) []models.Post {
	out := make([]models.Post, 0)
	for _, p := range m.posts {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *mockPostRepository) ListPublic(_ context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(p *models.Post) bool { return p.IsPublic() }), nil
}

func (m *mockPostRepository) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(p *models.Post) bool { return p.AuthorID == authorID }), nil
}

func (m *mockPostRepository) IncrementViews(_ context.Context, id uuid.UUID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	p.Views++
	cp := *p
	return &cp, nil
}

func (m *mockPostRepository) ToggleLike(_ context.Context, id, userID uuid.UUID) (*models.LikeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	likes, liked := toggle(&p.LikedBy, userID)
	p.Likes = likes
	return &models.LikeResult{Likes: likes, IsLiked: liked}, nil
}

// toggle повторяет семантику SQL переключения лайка.
func toggle(likedBy *pq.StringArray, userID uuid.UUID) (int, bool) {
	id := userID.String()
	for i, v := range *likedBy {
		if v == id {
			*likedBy = append((*likedBy)[:i:i], (*likedBy)[i+1:]...)
			return len(*likedBy), false
		}
	}
	*likedBy = append(*likedBy, id)
	return len(*likedBy), true
}

// mockCommentRepository реализует CommentRepository в памяти.
type mockCommentRepository struct {
	mu       sync.Mutex
	posts    *mockPostRepository
	comments map[uuid.UUID]*models.Comment
	seq      int
}

func newMockCommentRepository(posts *mockPostRepository) *mockCommentRepository {
	return &mockCommentRepository{posts: posts, comments: make(map[uuid.UUID]*models.Comment)}
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if _, err := m.posts.GetByID(ctx, comment.PostID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	comment.ID = uuid.New()
	comment.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	comment.LikedBy = pq.StringArray{}
	cp := *comment
	m.comments[comment.ID] = &cp
	return nil
}

func (m *mockCommentRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.comments[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, repository.ErrCommentNotFound
}

func (m *mockCommentRepository) ListByPost(_ context.Context, postID uuid.UUID) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Comment, 0)
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockCommentRepository) CountByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	list, err := m.ListByPost(ctx, postID)
	return len(list), err
}

func (m *mockCommentRepository) ToggleLike(_ context.Context, id, userID uuid.UUID) (*models.LikeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, repository.ErrCommentNotFound
	}
	likes, liked := toggle(&c.LikedBy, userID)
	c.Likes = likes
	return &models.LikeResult{Likes: likes, IsLiked: liked}, nil
}

func (m *mockCommentRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[id]; !ok {
		return repository.ErrCommentNotFound
	}
	delete(m.comments, id)
	return nil
}

// mockSpotRepository отдаёт фиксированный список мест.
type mockSpotRepository struct {
	spots []models.Spot
	calls int
	err   error
}

func (m *mockSpotRepository) List(_ context.Context) ([]models.Spot, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.spots, nil
}

// mockImageStorage хранит файлы в памяти.
type mockImageStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	limit   int64
	deleted []string
}

func newMockImageStorage(limit int64) *mockImageStorage {
	return &mockImageStorage{files: make(map[string][]byte), limit: limit}
}

func (m *mockImageStorage) Save(_ context.Context, ownerID uuid.UUID, name string, r io.Reader) (string, int64, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return "", 0, err
	}
	if m.limit > 0 && n > m.limit {
		return "", 0, storage.ErrFileTooLarge
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("%s/%d_%s", ownerID, len(m.files), name)
	m.files[path] = buf.Bytes()
	return path, n, nil
}

func (m *mockImageStorage) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	m.deleted = append(m.deleted, path)
	return nil
}
