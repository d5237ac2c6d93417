package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type DriverClaims struct {
	jwt.RegisteredClaims
}

// AuthMiddleware guards the driver mutation endpoints with the bearer token
// issued by the passcode gate.
func AuthMiddleware(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header missing or invalid",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.ParseWithClaims(tokenString, &DriverClaims{}, func(t *jwt.Token) (interface{}, error) {
			return jwtSecret, nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "invalid token",
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*DriverClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "invalid token claims",
			})
			c.Abort()
			return
		}

		cu := CurrentDriver{}
		if claims.IssuedAt != nil {
			cu.IssuedAtUnix = claims.IssuedAt.Unix()
		}
		c.Set(ContextDriverKey, cu)

		c.Next()
	}
}

// GetCurrentDriver pulls the authenticated driver out of the gin context.
func GetCurrentDriver(c *gin.Context) (CurrentDriver, bool) {
	v, ok := c.Get(ContextDriverKey)
	if !ok {
		return CurrentDriver{}, false
	}
	cu, ok := v.(CurrentDriver)
	return cu, ok
}
