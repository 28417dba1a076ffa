package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kindalike/backend/internal/auth"
	"github.com/kindalike/backend/internal/models"
	"github.com/kindalike/backend/internal/repository"
	"github.com/kindalike/backend/pkg/utils"
)

type AuthHandler struct {
	repoManager *repository.RepositoryManager
	tokenIssuer *auth.TokenIssuer
	logger      *logrus.Logger
}

func NewAuthHandler(
	repoManager *repository.RepositoryManager,
	tokenIssuer *auth.TokenIssuer,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		repoManager: repoManager,
		tokenIssuer: tokenIssuer,
		logger:      logger,
	}
}

// HandleSignup registers a new account and returns a ready-to-use token.
func (h *AuthHandler) HandleSignup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if _, err := h.repoManager.User.GetByUsername(req.Username); err == nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Username already exists", nil)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.logger.WithError(err).Error("Failed to check username")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Error creating user", err)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Error creating user", err)
		return
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
	}
	if err := h.repoManager.User.Create(user); err != nil {
		h.logger.WithError(err).Error("Failed to create user")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Error creating user", err)
		return
	}

	token, err := h.tokenIssuer.Generate(user.ID, user.Username)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate token")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Error creating user", err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	c.JSON(http.StatusCreated, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User: models.UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			CreatedAt: user.CreatedAt,
		},
	})
}

// HandleLogin verifies credentials and returns a token. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (h *AuthHandler) HandleLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	user, err := h.repoManager.User.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid username or password", nil)
			return
		}
		h.logger.WithError(err).Error("Failed to load user")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Error during login", err)
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid username or password", nil)
		return
	}

	token, err := h.tokenIssuer.Generate(user.ID, user.Username)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate token")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Error during login", err)
		return
	}

	h.logger.WithField("user_id", user.ID).Info("User logged in")

	c.JSON(http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User: models.UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			CreatedAt: user.CreatedAt,
		},
	})
}
