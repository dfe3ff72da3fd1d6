package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"yieldpilot/internal/domain"
)

type AdminJWT struct {
	Subject   string `json:"sub"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat"`
}

func parseAdminJWT(jwtStr string, secret string) (*AdminJWT, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("failed to parse claims")
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal claims: %w", err)
	}
	var parsedJWT AdminJWT
	if err := json.Unmarshal(claimsJSON, &parsedJWT); err != nil {
		return nil, fmt.Errorf("failed to unmarshal claims: %w", err)
	}

	if time.Now().UTC().Unix() > parsedJWT.ExpiresAt {
		return nil, fmt.Errorf("jwt is expired")
	}

	return &parsedJWT, nil
}

// adminAuthMiddleware gates the operator endpoints behind an HS256 bearer
// token carrying role=admin.
func (h ApiHandler) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			returnErrorJsonCode(fmt.Errorf("missing bearer token: %w", domain.ErrUnauthorized), c, 401)
			return
		}
		jwtStr := strings.TrimPrefix(header, "Bearer ")
		claims, err := parseAdminJWT(jwtStr, h.AdminJWTSecret)
		if err != nil {
			returnErrorJsonCode(fmt.Errorf("%s: %w", err.Error(), domain.ErrUnauthorized), c, 401)
			return
		}
		if claims.Role != "admin" {
			returnErrorJsonCode(fmt.Errorf("role %q is not admin: %w", claims.Role, domain.ErrUnauthorized), c, 403)
			return
		}
		c.Set("adminSubject", claims.Subject)
		c.Next()
	}
}
