package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/citadel-archive/citadel-api/internal/service"
	appErrors "github.com/citadel-archive/citadel-api/pkg/errors"
	"github.com/citadel-archive/citadel-api/pkg/response"
)

// ContextPairingKey is the gin context key storing the pairing claims.
const ContextPairingKey = "pairingClaims"

// Pairing protects the mobile capture routes by requiring a valid
// link-code token minted through settings.
func Pairing(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired link code"))
			c.Abort()
			return
		}
		if claims.Subject != service.PairingSubject {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid link code subject"))
			c.Abort()
			return
		}

		c.Set(ContextPairingKey, claims)
		c.Next()
	}
}
