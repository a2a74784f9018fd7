package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/Antocflores/casino/internal/models"
	"github.com/Antocflores/casino/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
)

func newTestAuthService(t *testing.T) *services.AuthService {
	t.Helper()
	authService, err := services.NewAuthService(services.AuthConfig{
		AdminEmail:    "admin123@gmail.com",
		AdminPassword: "123456",
		BuyerDomain:   "@usm.cl",
		JWTSecret:     "test_jwt_secret",
	})
	assert.NoError(t, err)
	return authService
}

func TestAuthService_ResolveRole(t *testing.T) {
	authService := newTestAuthService(t)

	// Admin email with the right password
	role, err := authService.ResolveRole("admin123@gmail.com", "123456")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	// Admin email with the wrong password
	_, err = authService.ResolveRole("admin123@gmail.com", "letmein")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Buyer domain, password ignored
	role, err = authService.ResolveRole("alumno@usm.cl", "")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleBuyer, role)

	// Foreign domain
	_, err = authService.ResolveRole("someone@gmail.com", "whatever")
	assert.ErrorIs(t, err, services.ErrDomainNotAllowed)
}

func TestAuthService_LoginIssuesSessionToken(t *testing.T) {
	authService := newTestAuthService(t)

	session, token, err := authService.Login("alumno@usm.cl", "")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, session.UserID)
	assert.Equal(t, "alumno@usm.cl", session.Email)
	assert.Equal(t, models.RoleBuyer, session.Role)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte("test_jwt_secret"), nil
	})
	assert.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, session.UserID, claims["user_id"])
	assert.Equal(t, "alumno@usm.cl", claims["email"])
	assert.Equal(t, "buyer", claims["role"])
}

func TestAuthService_EachLoginMintsFreshSessionID(t *testing.T) {
	authService := newTestAuthService(t)

	first, _, err := authService.Login("alumno@usm.cl", "")
	assert.NoError(t, err)
	second, _, err := authService.Login("alumno@usm.cl", "")
	assert.NoError(t, err)
	assert.NotEqual(t, first.UserID, second.UserID)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := newTestAuthService(t)

	// Valid token straight from Login
	_, token, err := authService.Login("admin123@gmail.com", "123456")
	assert.NoError(t, err)
	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "admin", claims["role"])

	// Garbage token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"email":   "alumno@usm.cl",
		"role":    "buyer",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte("test_jwt_secret"))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}
