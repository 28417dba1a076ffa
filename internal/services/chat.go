package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kindalike/backend/internal/location"
	"github.com/kindalike/backend/internal/models"
	"github.com/kindalike/backend/internal/repository"
	"github.com/kindalike/backend/internal/yelp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// recommendationLimit caps how many businesses one chat turn returns.
const recommendationLimit = 5

// ErrSessionNotFound is returned when the session id does not match an
// owned (and, for chat continuation, active) session.
var ErrSessionNotFound = errors.New("chat session not found")

// IntentStructurer produces a search intent from a chat message.
type IntentStructurer interface {
	Structure(ctx context.Context, query string, prefs *models.UserPreferences) models.StructuredIntent
}

// RestaurantSearcher runs an intent-driven business search.
type RestaurantSearcher interface {
	SearchWithIntent(ctx context.Context, loc string, intent models.StructuredIntent, prefs *models.UserPreferences, limit int) *yelp.SearchResponse
}

// LocationResolver maps a client address to a locality.
type LocationResolver interface {
	Resolve(ctx context.Context, ip string) location.Info
}

// ChatService runs the recommendation pipeline for one chat turn and manages
// session lifecycle.
type ChatService struct {
	repoManager *repository.RepositoryManager
	structurer  IntentStructurer
	searcher    RestaurantSearcher
	resolver    LocationResolver
	logger      *logrus.Logger
}

func NewChatService(
	repoManager *repository.RepositoryManager,
	structurer IntentStructurer,
	searcher RestaurantSearcher,
	resolver LocationResolver,
	logger *logrus.Logger,
) *ChatService {
	return &ChatService{
		repoManager: repoManager,
		structurer:  structurer,
		searcher:    searcher,
		resolver:    resolver,
		logger:      logger,
	}
}

// ProcessMessage runs one chat turn: resolve the session, gather preferences
// and location, structure the query, search, and persist both sides of the
// exchange. Each persistence step commits on its own, so a failure partway
// leaves the earlier writes in place.
func (s *ChatService) ProcessMessage(
	ctx context.Context,
	userID uint,
	req models.ChatMessageRequest,
	headers http.Header,
) (*models.ChatMessageResponse, error) {
	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"message": req.Message,
	}).Info("Received chat message")

	session, err := s.resolveSession(userID, req.SessionID)
	if err != nil {
		return nil, err
	}
	s.logger.WithField("session_id", session.ID).Debug("Using chat session")

	prefs, err := s.loadPreferences(userID)
	if err != nil {
		return nil, err
	}

	loc := s.resolveLocation(ctx, req, headers)
	s.logger.WithField("location", loc).Debug("Using location")

	userMessage := &models.ChatMessage{
		SessionID: session.ID,
		Role:      "user",
		Content:   req.Message,
	}
	if err := s.repoManager.ChatMessage.Create(userMessage); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	intent := s.structurer.Structure(ctx, req.Message, prefs)
	result := s.searcher.SearchWithIntent(ctx, loc, intent, prefs, recommendationLimit)
	if result.Error != "" {
		s.logger.WithField("error", result.Error).Warn("Business search returned an error")
	}

	recommendations := make([]models.Recommendation, 0, len(result.Businesses))
	for _, business := range result.Businesses {
		recommendations = append(recommendations, yelp.FormatForDisplay(business))
	}

	var responseText string
	if len(recommendations) > 0 {
		responseText = fmt.Sprintf("Based on your request for '%s' in %s, here are my top recommendations:", req.Message, loc)
	} else {
		responseText = fmt.Sprintf("I couldn't find any restaurants matching '%s' in %s. Try adjusting your search or location.", req.Message, loc)
	}

	assistantMessage := &models.ChatMessage{
		SessionID:       session.ID,
		Role:            "assistant",
		Content:         responseText,
		Recommendations: recommendations,
	}
	if err := s.repoManager.ChatMessage.Create(assistantMessage); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":      session.ID,
		"recommendations": len(recommendations),
	}).Info("Chat turn completed")

	return &models.ChatMessageResponse{
		SessionID:       session.ID,
		MessageID:       assistantMessage.ID,
		Response:        responseText,
		Recommendations: recommendations,
	}, nil
}

// resolveSession continues an existing active session or starts a new one.
// An inactive or foreign session id maps to ErrSessionNotFound.
func (s *ChatService) resolveSession(userID uint, sessionID *uint) (*models.ChatSession, error) {
	if sessionID != nil {
		session, err := s.repoManager.ChatSession.GetActive(*sessionID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSessionNotFound
			}
			return nil, fmt.Errorf("failed to load chat session: %w", err)
		}
		return session, nil
	}

	session := &models.ChatSession{UserID: userID, IsActive: true}
	if err := s.repoManager.ChatSession.Create(session); err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	return session, nil
}

// loadPreferences returns nil when the user has not saved preferences yet.
func (s *ChatService) loadPreferences(userID uint) (*models.UserPreferences, error) {
	prefs, err := s.repoManager.Preferences.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return prefs, nil
}

// resolveLocation prefers the explicit override in the request, then IP
// geolocation. Resolution never fails; the resolver falls back to a fixed
// locality.
func (s *ChatService) resolveLocation(ctx context.Context, req models.ChatMessageRequest, headers http.Header) string {
	if req.Location != nil && *req.Location != "" {
		return *req.Location
	}

	clientIP := location.ExtractClientIP(headers)
	info := s.resolver.Resolve(ctx, clientIP)
	return info.FormattedLocation
}

// ListSessions returns the user's sessions, newest activity first, with
// message counts.
func (s *ChatService) ListSessions(userID uint) ([]models.ChatSessionSummary, error) {
	return s.repoManager.ChatSession.ListByUser(userID)
}

// NewSession starts a fresh session for the user.
func (s *ChatService) NewSession(userID uint) (*models.ChatSessionSummary, error) {
	session := &models.ChatSession{UserID: userID, IsActive: true}
	if err := s.repoManager.ChatSession.Create(session); err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}

	return &models.ChatSessionSummary{
		ID:            session.ID,
		StartedAt:     session.StartedAt,
		LastMessageAt: session.LastMessageAt,
		IsActive:      session.IsActive,
		MessageCount:  0,
	}, nil
}

// SessionMessages returns a session's transcript in chronological order.
// Ownership is checked regardless of the session's active flag.
func (s *ChatService) SessionMessages(sessionID, userID uint) ([]models.ChatMessage, error) {
	if _, err := s.repoManager.ChatSession.GetOwned(sessionID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load chat session: %w", err)
	}

	return s.repoManager.ChatMessage.ListBySession(sessionID)
}

// DeactivateSession soft-deletes a session. Deactivating an already-inactive
// session succeeds; ErrSessionNotFound means the user never owned it.
func (s *ChatService) DeactivateSession(sessionID, userID uint) error {
	if err := s.repoManager.ChatSession.Deactivate(sessionID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to deactivate chat session: %w", err)
	}
	return nil
}
