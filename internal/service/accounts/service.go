// Package accounts implements the session boundary endpoints:
// registration, login, logout and the session error slot. The core
// never authenticates; everything downstream of this package only sees
// the opaque user id carried by the token.
package accounts

import (
	"net/http"
	"strings"

	"github.com/flamematch/backend/internal/app"
	"github.com/flamematch/backend/internal/auth"
	"github.com/flamematch/backend/internal/db"
	svcErr "github.com/flamematch/backend/internal/errors"
	"github.com/flamematch/backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service implements the account endpoints.
type Service struct {
	appCtx   *app.AppContext
	tokens   *auth.Tokens
	userRepo *repository.UserRepository
}

// NewService wires the accounts service from AppContext.
func NewService(appCtx *app.AppContext, tokens *auth.Tokens) *Service {
	return &Service{
		appCtx:   appCtx,
		tokens:   tokens,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  *db.User `json:"user"`
}

// Register creates a profile and returns a session token for it.
func (s *Service) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		err := svcErr.InvalidArgument("email, password and name are required")
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	user := &db.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
	}
	if err := s.userRepo.Create(c.Request.Context(), user); err != nil {
		if isDuplicate(err) {
			err := svcErr.Conflict("email already registered")
			c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		mapped := svcErr.Map(err)
		c.JSON(svcErr.HTTPStatus(mapped), gin.H{"error": mapped.Error()})
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	s.appCtx.Logger.Info("user registered", "user_id", user.ID)
	c.JSON(http.StatusCreated, authResponse{Token: token, User: user})
}

// Login verifies credentials and returns a session token.
func (s *Service) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := s.userRepo.GetByEmail(c.Request.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		// same answer for unknown email and wrong password
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// Logout drops the caller's server-side session: queue, match cache and
// any live conversation subscription are released deterministically.
func (s *Service) Logout(c *gin.Context) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	s.appCtx.Sessions.Drop(userID)
	c.Status(http.StatusNoContent)
}

// LastError returns and clears the session's latest-error slot. The
// client displays it once; a new error overwrites an unread one.
func (s *Service) LastError(c *gin.Context) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	if lastErr := s.appCtx.Sessions.Get(userID).TakeError(); lastErr != nil {
		c.JSON(http.StatusOK, gin.H{"error": lastErr.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// isDuplicate detects unique-constraint violations across the dialects
// we run on (MySQL in production, SQLite in tests).
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if strings.Contains(err.Error(), "Duplicate entry") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}
	return err == gorm.ErrDuplicatedKey
}
