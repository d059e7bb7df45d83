package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
	appErrors "github.com/prathampatel001/KnowledgeBase-v1/pkg/errors"
)

type authRepoStub struct {
	byEmail map[string]models.User
	created []*models.User
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return &user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	if s.byEmail == nil {
		s.byEmail = make(map[string]models.User)
	}
	s.byEmail[user.Email] = *user
	s.created = append(s.created, user)
	return nil
}

func newTestAuthService(repo *authRepoStub) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{TokenSecret: "test-secret", TokenExpiry: time.Hour, Issuer: "knowledgebase"})
}

func TestAuthServiceRegisterAssignsStandardRole(t *testing.T) {
	repo := &authRepoStub{}
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Pat",
		Email:    "pat@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStandard, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := &authRepoStub{byEmail: map[string]models.User{
		"pat@example.com": {ID: "user-1", Email: "pat@example.com"},
	}}
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Pat",
		Email:    "pat@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &authRepoStub{byEmail: map[string]models.User{
		"pat@example.com": {ID: "user-1", Email: "pat@example.com", PasswordHash: string(hash)},
	}}
	svc := newTestAuthService(repo)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "pat@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	svc := newTestAuthService(&authRepoStub{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginAndValidateRoundTrip(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &authRepoStub{byEmail: map[string]models.User{
		"pat@example.com": {ID: "user-1", Name: "Pat", Email: "pat@example.com", PasswordHash: string(hash), Role: models.RoleSuper},
	}}
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "pat@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), res.ExpiresIn)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "pat@example.com", claims.Email)
	assert.Equal(t, models.RoleSuper, claims.Role)
}

func TestAuthServiceValidateRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(&authRepoStub{})

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
