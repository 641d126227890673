package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jlindhorst/studiprogress-api/internal/models"
	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
	"github.com/jlindhorst/studiprogress-api/pkg/hash"
)

type fakeAuthRepo struct {
	student      *models.Student
	passwordHash string
}

func (f *fakeAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	if f.student == nil || f.student.Email != email {
		return nil, sql.ErrNoRows
	}
	return f.student, nil
}

func (f *fakeAuthRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if f.student == nil || f.student.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.student, nil
}

func (f *fakeAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	f.passwordHash = passwordHash
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeAuthRepo) {
	t.Helper()
	hasher := hash.NewBcryptHasher(4)
	passwordHash, err := hasher.Hash("geheim123")
	require.NoError(t, err)
	repo := &fakeAuthRepo{student: &models.Student{ID: "stu-1", Email: "lena@example.com", PasswordHash: passwordHash}}
	cfg := AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "studiprogress-api"}
	return NewAuthService(repo, hasher, validator.New(), zap.NewNop(), cfg), repo
}

func TestAuthServiceLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "lena@example.com", Password: "geheim123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "stu-1", resp.StudentID)
	assert.NotEmpty(t, resp.AccessToken)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "stu-1", claims.StudentID)
	assert.Equal(t, "lena@example.com", claims.Email)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "lena@example.com", Password: "falsch123"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "unbekannt@example.com", Password: "geheim123"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceValidateTokenRejectsForeignSecret(t *testing.T) {
	svc, _ := newAuthFixture(t)
	other := NewAuthService(&fakeAuthRepo{}, hash.NewBcryptHasher(4), validator.New(), zap.NewNop(),
		AuthConfig{Secret: "other-secret", Expiration: time.Hour})

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "lena@example.com", Password: "geheim123"})
	require.NoError(t, err)

	_, err = other.ValidateToken(resp.AccessToken)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc, repo := newAuthFixture(t)

	err := svc.ChangePassword(context.Background(), "stu-1", ChangePasswordRequest{OldPassword: "geheim123", NewPassword: "nochGeheimer1"})
	require.NoError(t, err)
	assert.NotEmpty(t, repo.passwordHash)

	err = svc.ChangePassword(context.Background(), "stu-1", ChangePasswordRequest{OldPassword: "falsch123", NewPassword: "nochGeheimer1"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}
