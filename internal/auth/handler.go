package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Handler implements the driver passcode gate. A single shared 4-digit
// passcode is hashed in config; a successful check issues a short-lived
// bearer token for the driver mutation endpoints.
type Handler struct {
	PasscodeHash string
	JWTSecret    []byte
	TokenTTL     time.Duration
}

func NewHandler(passcodeHash, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{
		PasscodeHash: passcodeHash,
		JWTSecret:    []byte(jwtSecret),
		TokenTTL:     tokenTTL,
	}
}

type LoginRequest struct {
	Passcode string `json:"passcode" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/auth/login", h.Login)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "invalid JSON body",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.PasscodeHash), []byte(req.Passcode)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_passcode",
			"message": "passcode salah",
		})
		return
	}

	now := time.Now()
	claims := DriverClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(h.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "token_error",
			"message": "failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: tokenString})
}
