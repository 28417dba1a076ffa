package repository

import (
	"time"

	"github.com/kindalike/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepositoryImpl implements UserRepository
type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) models.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepositoryImpl) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// PreferencesRepositoryImpl implements PreferencesRepository
type PreferencesRepositoryImpl struct {
	db *gorm.DB
}

func NewPreferencesRepository(db *gorm.DB) models.PreferencesRepository {
	return &PreferencesRepositoryImpl{db: db}
}

// Upsert overwrites all five preference fields when a record exists for the
// user, otherwise inserts a new one. Updating with nil fields clears them.
func (r *PreferencesRepositoryImpl) Upsert(prefs *models.UserPreferences) error {
	var existing models.UserPreferences
	err := r.db.Where("user_id = ?", prefs.UserID).First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return r.db.Create(prefs).Error
		}
		return err
	}

	updates := map[string]interface{}{
		"cuisine_type":         prefs.CuisineType,
		"price_range":          prefs.PriceRange,
		"dining_style":         prefs.DiningStyle,
		"dietary_restrictions": prefs.DietaryRestrictions,
		"atmosphere":           prefs.Atmosphere,
		"updated_at":           time.Now(),
	}
	if err := r.db.Model(&models.UserPreferences{}).
		Where("user_id = ?", prefs.UserID).
		Updates(updates).Error; err != nil {
		return err
	}

	return r.db.Where("user_id = ?", prefs.UserID).First(prefs).Error
}

func (r *PreferencesRepositoryImpl) GetByUserID(userID uint) (*models.UserPreferences, error) {
	var prefs models.UserPreferences
	err := r.db.Where("user_id = ?", userID).First(&prefs).Error
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// ChatSessionRepositoryImpl implements ChatSessionRepository
type ChatSessionRepositoryImpl struct {
	db *gorm.DB
}

func NewChatSessionRepository(db *gorm.DB) models.ChatSessionRepository {
	return &ChatSessionRepositoryImpl{db: db}
}

func (r *ChatSessionRepositoryImpl) Create(session *models.ChatSession) error {
	return r.db.Create(session).Error
}

// GetActive matches on id, owner and is_active; inactive sessions are not
// re-matched for chat continuation.
func (r *ChatSessionRepositoryImpl) GetActive(id, userID uint) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.Where("id = ? AND user_id = ? AND is_active = ?", id, userID, true).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ChatSessionRepositoryImpl) GetOwned(id, userID uint) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.Where("id = ? AND user_id = ?", id, userID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ChatSessionRepositoryImpl) ListByUser(userID uint) ([]models.ChatSessionSummary, error) {
	var summaries []models.ChatSessionSummary
	err := r.db.Raw(`
		SELECT
			cs.id,
			cs.started_at,
			cs.last_message_at,
			cs.is_active,
			COUNT(cm.id) AS message_count
		FROM chat_sessions cs
		LEFT JOIN chat_messages cm ON cs.id = cm.session_id
		WHERE cs.user_id = ?
		GROUP BY cs.id, cs.started_at, cs.last_message_at, cs.is_active
		ORDER BY cs.last_message_at DESC
	`, userID).Scan(&summaries).Error
	return summaries, err
}

// Deactivate matches on id and owner only, not is_active: deactivating an
// already-inactive session succeeds, NotFound means the session never
// belonged to the user.
func (r *ChatSessionRepositoryImpl) Deactivate(id, userID uint) error {
	result := r.db.Model(&models.ChatSession{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ChatMessageRepositoryImpl implements ChatMessageRepository
type ChatMessageRepositoryImpl struct {
	db *gorm.DB
}

func NewChatMessageRepository(db *gorm.DB) models.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{db: db}
}

// Create appends a message and touches the owning session's last_message_at.
// Each insert commits on its own; there is no turn-level transaction.
func (r *ChatMessageRepositoryImpl) Create(message *models.ChatMessage) error {
	if err := r.db.Create(message).Error; err != nil {
		return err
	}

	return r.db.Model(&models.ChatSession{}).
		Where("id = ?", message.SessionID).
		Update("last_message_at", time.Now()).Error
}

func (r *ChatMessageRepositoryImpl) ListBySession(sessionID uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	User        models.UserRepository
	Preferences models.PreferencesRepository
	ChatSession models.ChatSessionRepository
	ChatMessage models.ChatMessageRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		User:        NewUserRepository(db),
		Preferences: NewPreferencesRepository(db),
		ChatSession: NewChatSessionRepository(db),
		ChatMessage: NewChatMessageRepository(db),
	}
}
