package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

// Identity is the caller as asserted by the identity provider's token.
type Identity struct {
	UserID    int64
	Role      domain.Role
	CompanyID *int64
}

type Claims struct {
	Role      domain.Role `json:"role"`
	CompanyID *int64      `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

// ErrNoSecret is returned when token signing or verification is attempted
// without a key.
var ErrNoSecret = errors.New("jwt secret is not configured")

// IssueToken signs an HS256 token for id.
func IssueToken(secret string, id Identity, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := Claims{
		Role:      id.Role,
		CompanyID: id.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseToken(secret, raw string) (Identity, error) {
	if secret == "" {
		return Identity{}, ErrNoSecret
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, errors.New("token subject is not a user id")
	}
	return Identity{UserID: userID, Role: claims.Role, CompanyID: claims.CompanyID}, nil
}

// Auth validates a Bearer token and stores the caller's Identity.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		id, err := ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
		if errors.Is(err, ErrNoSecret) {
			logger.WithContext(c.Request.Context()).Error("token verification disabled", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if err != nil {
			logger.WithContext(c.Request.Context()).Info("token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		SetIdentity(c, id)
		c.Next()
	}
}

func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
	c.Set("user_id", id.UserID)
	c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), id.UserID))
}

func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// RequireManager admits managers bound to a company.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		if id.Role != domain.RoleManager {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}
		if id.CompanyID == nil || *id.CompanyID == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "User is not associated with any company"})
			return
		}
		c.Next()
	}
}
