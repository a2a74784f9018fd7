package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Antocflores/casino/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when the admin password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDomainNotAllowed is returned when the email matches neither the
	// admin address nor the buyer domain.
	ErrDomainNotAllowed = errors.New("email domain not allowed")
)

// AuthConfig holds the login rules. There is no user registry: the role is
// resolved from the email alone and lives only in the session token.
type AuthConfig struct {
	AdminEmail    string
	AdminPassword string
	BuyerDomain   string // e.g. "@usm.cl"
	JWTSecret     string
}

// AuthService resolves login emails to roles and issues session tokens.
type AuthService struct {
	adminEmail  string
	adminHash   []byte
	buyerDomain string
	jwtSecret   []byte
	tokenDurat  time.Duration
}

// NewAuthService creates a new AuthService. The configured admin password
// is hashed once up front so logins only ever compare against the hash.
func NewAuthService(cfg AuthConfig) (*AuthService, error) {
	adminHash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &AuthService{
		adminEmail:  cfg.AdminEmail,
		adminHash:   adminHash,
		buyerDomain: cfg.BuyerDomain,
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenDurat:  24 * time.Hour,
	}, nil
}

// ResolveRole maps (email, password) to a role. The admin address requires
// the admin password; any address on the buyer domain is a buyer and the
// password is ignored. This is an access gate, not a security boundary.
func (s *AuthService) ResolveRole(email, password string) (models.Role, error) {
	if email == s.adminEmail {
		if err := bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)); err != nil {
			return "", ErrInvalidCredentials
		}
		return models.RoleAdmin, nil
	}
	if strings.HasSuffix(email, s.buyerDomain) {
		return models.RoleBuyer, nil
	}
	return "", ErrDomainNotAllowed
}

// Login resolves the role, mints a fresh session identifier, and returns
// the session together with a signed JWT carrying it.
func (s *AuthService) Login(email, password string) (*models.Session, string, error) {
	role, err := s.ResolveRole(email, password)
	if err != nil {
		return nil, "", err
	}

	session := &models.Session{
		UserID: uuid.New().String(),
		Email:  email,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": session.UserID,
		"email":   session.Email,
		"role":    string(session.Role),
		"exp":     time.Now().Add(s.tokenDurat).Unix(),
		"iat":     time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return session, tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
