package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/infrastructure/config"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrTokenBlacklisted = errors.New("token has been revoked")
)

// Claims is the payload of both token kinds. Refresh tokens leave Email
// and Role empty so a refresh always re-reads the account.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// UserUUID parses the user_id claim.
func (c *Claims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// RemainingTTL is how long a revocation of this token must be remembered.
func (c *Claims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// Subject identifies the account a token pair is issued for.
type Subject struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// signer holds the key and lifetime of one token kind.
type signer struct {
	kind   TokenType
	secret []byte
	ttl    time.Duration
}

// JWTService issues and verifies HS256 token pairs. Access and refresh
// tokens may use different secrets.
type JWTService struct {
	access  signer
	refresh signer
	issuer  string
	now     func() time.Time
}

// NewJWTService falls back to the access secret when no refresh secret is
// configured.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		access:  signer{kind: TokenTypeAccess, secret: []byte(cfg.Secret), ttl: cfg.AccessTokenExpiration},
		refresh: signer{kind: TokenTypeRefresh, secret: []byte(refreshSecret), ttl: cfg.RefreshTokenExpiration},
		issuer:  cfg.Issuer,
		now:     time.Now,
	}
}

// IssuePair signs a fresh access and refresh token for sub.
func (s *JWTService) IssuePair(sub Subject) (*TokenPair, error) {
	now := s.now()
	access, err := s.sign(s.access, now, Claims{UserID: sub.UserID.String(), Email: sub.Email, Role: sub.Role})
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(s.refresh, now, Claims{UserID: sub.UserID.String()})
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  now.Add(s.access.ttl),
		RefreshTokenExpiresAt: now.Add(s.refresh.ttl),
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) sign(k signer, now time.Time, claims Claims) (string, error) {
	claims.TokenType = k.kind
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   claims.UserID,
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(now.Add(k.ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString(k.secret)
}

func (s *JWTService) ValidateAccessToken(token string) (*Claims, error) {
	return s.verify(s.access, token)
}

func (s *JWTService) ValidateRefreshToken(token string) (*Claims, error) {
	return s.verify(s.refresh, token)
}

func (s *JWTService) verify(k signer, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return k.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case claims.TokenType != k.kind:
		return nil, ErrInvalidTokenType
	case claims.UserID == "":
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshTTL bounds how long a user-wide revocation must be kept.
func (s *JWTService) RefreshTTL() time.Duration {
	return s.refresh.ttl
}
