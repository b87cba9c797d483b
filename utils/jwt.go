package utils

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"filevault/config"
)

func ExtractToken(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.Fields(authHeader)
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}

func ParseToken(tokenString string, config *config.EnvConfig) (*jwt.Token, error) {
	secret := []byte(config.JWT.SecretKey)
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
}

// InjectClaimsToContext copies the identity claims the handlers care about
// into the gin context. The email claim is the owner identity the upload
// endpoints cross-check their uploadedBy field against.
func InjectClaimsToContext(c *gin.Context, claims jwt.MapClaims) error {
	email, ok := claims["email"].(string)
	if !ok || strings.TrimSpace(email) == "" {
		return errors.New("missing email claim")
	}
	c.Set("uploaded_by", strings.TrimSpace(email))
	return nil
}
