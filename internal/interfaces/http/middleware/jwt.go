package middleware

import (
	"errors"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/infrastructure/auth"
	"github.com/zambezimeats/backend/internal/infrastructure/logger"
	"github.com/zambezimeats/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey = "jwt_claims"
	JWTRoleKey   = "jwt_role"
	AuthHeader   = "Authorization"
	BearerPrefix = "Bearer "
)

// RoleAdmin passes every role check.
const RoleAdmin = "admin"

// JWTConfig holds what the authentication middleware needs.
type JWTConfig struct {
	JWTService *auth.JWTService
	// Blacklist is optional; without it revoked tokens stay valid until expiry.
	Blacklist auth.TokenBlacklist
	Logger    *zap.Logger
}

// JWTAuth requires a valid, unrevoked access token and stores its claims in
// the gin context.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeader)
		if header == "" {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			abortWithError(c, dto.ErrCodeTokenInvalid, "Invalid authorization header format")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			log.Debug("Token rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
			abortTokenError(c, err)
			return
		}

		if cfg.Blacklist != nil {
			ctx := c.Request.Context()
			// Revocation lookups fail open so a redis outage does not log everyone out.
			if revoked, err := cfg.Blacklist.IsBlacklisted(ctx, claims.ID); err != nil {
				log.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
			} else if revoked {
				abortTokenError(c, auth.ErrTokenBlacklisted)
				return
			}
			if claims.IssuedAt != nil {
				if revoked, err := cfg.Blacklist.IsUserRevoked(ctx, claims.UserID, claims.IssuedAt.Time); err != nil {
					log.Error("Failed to check user revocation", zap.String("user_id", claims.UserID), zap.Error(err))
				} else if revoked {
					abortTokenError(c, auth.ErrTokenBlacklisted)
					return
				}
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTRoleKey, claims.Role)
		c.Set(logger.GinUserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

func abortTokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		abortWithError(c, dto.ErrCodeTokenExpired, "Token has expired")
	case errors.Is(err, auth.ErrTokenBlacklisted):
		abortWithError(c, dto.ErrCodeTokenRevoked, "Token has been revoked")
	default:
		abortWithError(c, dto.ErrCodeTokenInvalid, "Invalid token")
	}
}

// RequireRole lets through callers holding one of roles. Admins always pass.
// It must run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(JWTRoleKey)
		if role == "" {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if role != RoleAdmin && !slices.Contains(roles, role) {
			abortWithError(c, dto.ErrCodeForbidden, "You do not have permission to perform this action")
			return
		}
		c.Next()
	}
}

// GetClaims retrieves JWT claims from gin.Context
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID returns the authenticated user's id, or false when the request
// carries no valid claims.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	claims := GetClaims(c)
	if claims == nil {
		return uuid.Nil, false
	}
	id, err := claims.UserUUID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
