package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kindalike/backend/internal/middleware"
	"github.com/kindalike/backend/internal/models"
	"github.com/kindalike/backend/internal/services"
	"github.com/kindalike/backend/pkg/utils"
)

type ChatHandler struct {
	chatService *services.ChatService
	logger      *logrus.Logger
}

func NewChatHandler(chatService *services.ChatService, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// HandleMessage runs one chat turn and returns the assistant response with
// recommendations.
func (h *ChatHandler) HandleMessage(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req models.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	resp, err := h.chatService.ProcessMessage(c.Request.Context(), userID, req, c.Request.Header)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Chat session not found or inactive", nil)
			return
		}
		h.logger.WithError(err).Error("Failed to process chat message")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Error processing message", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleListSessions returns the user's sessions, newest activity first.
func (h *ChatHandler) HandleListSessions(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	sessions, err := h.chatService.ListSessions(userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list chat sessions")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Error fetching sessions", err)
		return
	}

	if sessions == nil {
		sessions = []models.ChatSessionSummary{}
	}
	c.JSON(http.StatusOK, sessions)
}

// HandleNewSession starts a fresh chat session.
func (h *ChatHandler) HandleNewSession(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	summary, err := h.chatService.NewSession(userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create chat session")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Error creating session", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// HandleSessionMessages returns a session's transcript. Inactive sessions
// remain readable; only ownership is checked.
func (h *ChatHandler) HandleSessionMessages(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	sessionID, err := h.sessionIDParam(c)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid session id", err)
		return
	}

	messages, err := h.chatService.SessionMessages(sessionID, userID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Chat session not found", nil)
			return
		}
		h.logger.WithError(err).Error("Failed to load session messages")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Error fetching messages", err)
		return
	}

	if messages == nil {
		messages = []models.ChatMessage{}
	}
	c.JSON(http.StatusOK, messages)
}

// HandleDeactivateSession soft-deletes a session. Repeating the call on an
// already-inactive session still succeeds.
func (h *ChatHandler) HandleDeactivateSession(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	sessionID, err := h.sessionIDParam(c)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid session id", err)
		return
	}

	if err := h.chatService.DeactivateSession(sessionID, userID); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Chat session not found", nil)
			return
		}
		h.logger.WithError(err).Error("Failed to deactivate chat session")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Error deactivating session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Chat session deactivated successfully"})
}

func (h *ChatHandler) sessionIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("session_id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
