package middleware

import (
	"errors"
	"strconv"
	"strings"

	"recipebox/internal/config"
	"recipebox/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Token claim values shared by issuing and verifying code.
const (
	TokenIssuer   = "recipebox-api"
	TokenAudience = "recipebox-client"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired enforces a valid bearer token and stores the subject in
// c.Locals("userID").
func AuthRequired(c *fiber.Ctx) error {
	tokenString, err := bearerToken(c.Get("Authorization"))
	if err != nil {
		return unauthorized(c, err.Error())
	}

	userID, err := ParseToken(tokenString)
	if err != nil {
		return unauthorized(c, "Invalid or expired token")
	}

	c.Locals("userID", userID)
	return c.Next()
}

// ParseToken validates an HS256 token issued by this service and returns the
// user id carried in its subject.
func ParseToken(tokenString string) (uint, error) {
	if cfg == nil {
		return 0, errors.New("auth middleware not initialized")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return 0, errors.New("invalid user ID in token")
	}
	return uint(userID), nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("Authorization header required")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("Invalid authorization header format")
	}
	return parts[1], nil
}

func unauthorized(c *fiber.Ctx, message string) error {
	return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewInvalidCredentialsError(message))
}
