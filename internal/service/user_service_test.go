package service

import (
	"context"
	"testing"
	"time"

	"procurement-portal/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users  map[uuid.UUID]model.User
	tokens map[string]model.RefreshToken
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:  make(map[uuid.UUID]model.User),
		tokens: make(map[string]model.RefreshToken),
	}
}

func (r *stubUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	user, ok := r.users[parsed]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *model.User) error {
	r.users[user.ID] = *user
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, parsed)
	return nil
}

func (r *stubUserRepo) CreateRefreshToken(_ context.Context, token *model.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	r.tokens[token.Token] = *token
	return nil
}

func (r *stubUserRepo) GetRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	rt, ok := r.tokens[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rt, nil
}

func (r *stubUserRepo) DeleteRefreshToken(_ context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

func (r *stubUserRepo) DeleteRefreshTokensByUser(_ context.Context, userID string) error {
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	for tok, rt := range r.tokens {
		if rt.UserID == parsed {
			delete(r.tokens, tok)
		}
	}
	return nil
}

func seedUser(repo *stubUserRepo, email, password, role string) uuid.UUID {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	id := uuid.New()
	repo.users[id] = model.User{
		ID:       id,
		Username: "clerk",
		Email:    email,
		Phone:    "0912345678",
		Password: string(hashed),
		Role:     role,
	}
	return id
}

func TestCreateUserValidatesRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "newbie",
		Email:    "newbie@town.gov",
		Phone:    "0912345678",
		Password: "secret123",
		Role:     "superuser",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid role")

	created, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "newbie",
		Email:    "newbie@town.gov",
		Phone:    "0912345678",
		Password: "secret123",
		Role:     "staff",
	})
	require.NoError(t, err)
	assert.Equal(t, "staff", created.Role)

	// Stored password must be hashed
	stored, err := repo.GetByEmail(context.Background(), "newbie@town.gov")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.Password)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(repo, "clerk@town.gov", "secret123", "staff")
	svc := NewUserService(repo)

	_, err := svc.Login(context.Background(), LoginUserRequest{Email: "clerk@town.gov", Password: "wrong"})
	require.Error(t, err)

	tokens, err := svc.Login(context.Background(), LoginUserRequest{Email: "clerk@town.gov", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.Token)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Len(t, repo.tokens, 1, "the refresh token must be persisted")
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(repo, "clerk@town.gov", "secret123", "staff")
	svc := NewUserService(repo)

	tokens, err := svc.Login(context.Background(), LoginUserRequest{Email: "clerk@town.gov", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken)

	// The consumed token is gone
	_, err = svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.Error(t, err)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	repo := newStubUserRepo()
	userID := seedUser(repo, "clerk@town.gov", "secret123", "staff")
	svc := NewUserService(repo)

	repo.tokens["stale"] = model.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	_, err := svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
	assert.NotContains(t, repo.tokens, "stale", "expired tokens are purged on use")
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(repo, "clerk@town.gov", "secret123", "staff")
	svc := NewUserService(repo)

	tokens, err := svc.Login(context.Background(), LoginUserRequest{Email: "clerk@town.gov", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), tokens.RefreshToken))
	assert.Empty(t, repo.tokens)
}
