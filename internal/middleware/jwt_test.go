package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlindhorst/studiprogress-api/internal/models"
	"github.com/jlindhorst/studiprogress-api/internal/service"
	"github.com/jlindhorst/studiprogress-api/pkg/hash"
)

const testSecret = "middleware-test-secret"

type noopStudentRepo struct{}

func (noopStudentRepo) FindByEmail(context.Context, string) (*models.Student, error) {
	return nil, sql.ErrNoRows
}

func (noopStudentRepo) FindByID(context.Context, string) (*models.Student, error) {
	return nil, sql.ErrNoRows
}

func (noopStudentRepo) UpdatePassword(context.Context, string, string) error {
	return nil
}

func newJWTMiddleware(t *testing.T) gin.HandlerFunc {
	t.Helper()
	authService := service.NewAuthService(noopStudentRepo{}, hash.NewBcryptHasher(4), nil, nil, service.AuthConfig{
		Secret:     testSecret,
		Expiration: time.Hour,
		Issuer:     "studiprogress-test",
	})
	return JWT(authService)
}

func signToken(t *testing.T, secret string, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now().UTC()
	claims := &models.JWTClaims{
		StudentID: "student-1",
		Email:     "jan@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "student-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTMiddlewareAcceptsValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	c.Request.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, time.Hour))

	newJWTMiddleware(t)(c)

	assert.False(t, c.IsAborted())
	claims, ok := CurrentClaims(c)
	require.True(t, ok)
	assert.Equal(t, "student-1", claims.StudentID)
	assert.Equal(t, "jan@example.com", claims.Email)
}

func TestJWTMiddlewareRejectsMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)

	newJWTMiddleware(t)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareRejectsMalformedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	c.Request.Header.Set("Authorization", "Token abc")

	newJWTMiddleware(t)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareRejectsForeignSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	c.Request.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", time.Hour))

	newJWTMiddleware(t)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareRejectsExpiredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	c.Request.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, -time.Minute))

	newJWTMiddleware(t)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
