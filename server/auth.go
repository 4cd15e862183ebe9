package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/salesvision/salesvision/store"
)

// ============================================================================
// ACCOUNTS — Register / Login / Logout
// ============================================================================

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid registration payload"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "could not hash password"})
		return
	}

	user := store.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateUser(c.Request.Context(), user); err != nil {
		// UNIQUE violation on email is the common case here.
		c.JSON(http.StatusConflict, gin.H{"status": "error", "message": "email already registered"})
		return
	}

	s.log.WithField("user", user.Username).Info("user registered")
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "registered"})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid login payload"})
		return
	}

	user, err := s.store.UserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "lookup failed"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid credentials"})
		return
	}

	sessionID, sess := s.currentSession(c)
	sess.UserID = user.ID
	s.sessions.put(sessionID, sess)

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "logged in", "username": user.Username})
}

func (s *Server) handleLogout(c *gin.Context) {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		s.sessions.drop(id)
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "logged out"})
}

func (s *Server) handleAccount(c *gin.Context) {
	_, sess := s.currentSession(c)
	if sess.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "not logged in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "user_id": sess.UserID})
}
