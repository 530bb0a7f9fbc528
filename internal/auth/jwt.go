package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"room-chat-service/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
)

// Claims carried by both access and refresh tokens.
type Claims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies HS256 token pairs. Access and refresh
// tokens are signed with separate secrets.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
}

// NewTokenService constructs a TokenService.
func NewTokenService(accessSecret, refreshSecret string) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

// GenerateTokenPair issues an access and refresh token for the user.
func (s *TokenService) GenerateTokenPair(user models.User) (models.TokenPair, error) {
	access, err := s.sign(user, accessTTL, s.accessSecret)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := s.sign(user, refreshTTL, s.refreshSecret)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshTTL reports how long refresh tokens stay valid.
func (s *TokenService) RefreshTTL() time.Duration {
	return refreshTTL
}

// VerifyAccess validates an access token and returns its claims.
func (s *TokenService) VerifyAccess(token string) (*Claims, error) {
	return s.verify(token, s.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (s *TokenService) VerifyRefresh(token string) (*Claims, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *TokenService) sign(user models.User, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *TokenService) verify(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserID extracts the numeric account id from the claims subject.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}
