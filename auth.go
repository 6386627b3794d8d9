package main

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"znappystore/models"
)

// ErrInvalidCredentials covers both unknown email and wrong password so the
// login response never reveals which one it was.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Reserved login emails that simulate upstream failures for frontend testing.
const (
	networkErrorEmail = "network@error.com"
	serverErrorEmail  = "server@error.com"
)

const userContextKey = "user"

// authUser is the identity attached to the request context by the middleware.
type authUser struct {
	ID    uint
	Email string
	Name  string
}

func (s *Server) authenticate(email, password string) (*models.User, error) {
	user, err := s.users.FindUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Server) issueToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": user.ID,
		"email":  user.Email,
		"exp":    time.Now().Add(s.cfg.TokenTTL).Unix(),
	})
	return token.SignedString(s.cfg.JWTSecret)
}

// parseToken verifies signature and expiry and returns the embedded user id.
// Only the id is trusted; callers must re-resolve the user row.
func (s *Server) parseToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return s.cfg.JWTSecret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, jwt.ErrTokenUnverifiable
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}
	id, ok := claims["userId"].(float64)
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}
	return uint(id), nil
}

// requireAuth rejects requests without a valid bearer token and attaches the
// caller's identity to the context. The user row is fetched fresh on every
// request; token claims are trusted only for the id.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access denied", "message": "No token provided"})
			c.Abort()
			return
		}
		userID, err := s.parseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid token", "message": "Token verification failed"})
			c.Abort()
			return
		}
		user, err := s.users.FindUserByID(userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "message": "User not found"})
			} else {
				log.Printf("auth: user lookup failed: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": "An unexpected error occurred"})
			}
			c.Abort()
			return
		}
		c.Set(userContextKey, authUser{ID: user.ID, Email: user.Email, Name: user.Name})
		c.Next()
	}
}

// optionalAuth never rejects: a missing or broken token just leaves the
// request unauthenticated.
func (s *Server) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}
		userID, err := s.parseToken(tokenString)
		if err != nil {
			c.Next()
			return
		}
		user, err := s.users.FindUserByID(userID)
		if err != nil {
			c.Next()
			return
		}
		c.Set(userContextKey, authUser{ID: user.ID, Email: user.Email, Name: user.Name})
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return header[len("Bearer "):]
}

func currentUser(c *gin.Context) (authUser, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return authUser{}, false
	}
	user, ok := v.(authUser)
	return user, ok
}

func (s *Server) loginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation error", "message": "Email and password are required"})
		return
	}

	switch req.Email {
	case networkErrorEmail:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Network error", "message": "Network error occurred while connecting to server"})
		return
	case serverErrorEmail:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Server error", "message": "Server is temporarily unavailable. Please try again later."})
		return
	}

	user, err := s.authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed", "message": "Invalid email or password"})
			return
		}
		log.Printf("login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": "An unexpected error occurred during login"})
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		log.Printf("login: signing token failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": "An unexpected error occurred during login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    gin.H{"id": user.ID, "email": user.Email, "name": user.Name},
	})
}

// validateHandler lets a client check a stored token without hitting a
// protected route.
func (s *Server) validateHandler(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation error", "message": "Token is required"})
		return
	}

	userID, err := s.parseToken(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "error": "Invalid token", "message": "Token validation failed"})
		return
	}
	user, err := s.users.FindUserByID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "error": "Invalid token", "message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  gin.H{"id": user.ID, "email": user.Email, "name": user.Name},
	})
}

func (s *Server) healthHandler(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if user, ok := currentUser(c); ok {
		resp["user"] = gin.H{"id": user.ID, "email": user.Email, "name": user.Name}
	}
	c.JSON(http.StatusOK, resp)
}
