package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kindalike/backend/internal/middleware"
	"github.com/kindalike/backend/internal/models"
	"github.com/kindalike/backend/internal/repository"
	"github.com/kindalike/backend/pkg/utils"
)

type PreferencesHandler struct {
	repoManager *repository.RepositoryManager
	logger      *logrus.Logger
}

func NewPreferencesHandler(repoManager *repository.RepositoryManager, logger *logrus.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		repoManager: repoManager,
		logger:      logger,
	}
}

// HandleUpsert creates or fully replaces the user's preference record.
// Omitted fields clear the stored values; this is a whole-record write.
func (h *PreferencesHandler) HandleUpsert(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req models.PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	prefs := &models.UserPreferences{
		UserID:              userID,
		CuisineType:         req.CuisineType,
		PriceRange:          req.PriceRange,
		DiningStyle:         req.DiningStyle,
		DietaryRestrictions: req.DietaryRestrictions,
		Atmosphere:          req.Atmosphere,
	}

	if err := h.repoManager.Preferences.Upsert(prefs); err != nil {
		h.logger.WithError(err).Error("Failed to save preferences")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Error saving preferences", err)
		return
	}

	h.logger.WithField("user_id", userID).Info("Preferences saved")

	c.JSON(http.StatusCreated, prefs)
}

// HandleGet returns the user's saved preferences, 404 if none exist yet.
func (h *PreferencesHandler) HandleGet(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	prefs, err := h.repoManager.Preferences.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Preferences not found", nil)
			return
		}
		h.logger.WithError(err).Error("Failed to load preferences")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Error fetching preferences", err)
		return
	}

	c.JSON(http.StatusOK, prefs)
}
