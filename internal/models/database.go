package models

// GORM models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// RecommendationList stores the recommendations attached to an assistant
// message as a JSONB column. An empty list persists as NULL so user messages
// carry no recommendations payload.
type RecommendationList []Recommendation

func (r RecommendationList) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	return string(data), nil
}

func (r *RecommendationList) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}

	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), r)
	case []byte:
		return json.Unmarshal(v, r)
	default:
		return fmt.Errorf("cannot scan %T into RecommendationList", value)
	}
}

// User represents a registered account
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null;size:50"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserPreferences holds a user's saved dining preferences, one row per user.
// All five fields are free text; price_range is expected to be one of
// $, $$, $$$, $$$$ by the search pipeline but is not enforced here.
type UserPreferences struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	UserID              uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	CuisineType         *string   `json:"cuisine_type"`
	PriceRange          *string   `json:"price_range"`
	DiningStyle         *string   `json:"dining_style"`
	DietaryRestrictions *string   `json:"dietary_restrictions"`
	Atmosphere          *string   `json:"atmosphere"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// Associations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// ChatSession represents one conversation. Sessions are soft-deleted:
// is_active flips to false on close, rows are never removed.
type ChatSession struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"not null;index"`
	StartedAt     time.Time `json:"started_at" gorm:"autoCreateTime"`
	LastMessageAt time.Time `json:"last_message_at" gorm:"autoCreateTime"`
	IsActive      bool      `json:"is_active" gorm:"default:true"`

	// Associations
	Messages []ChatMessage `json:"messages,omitempty" gorm:"foreignKey:SessionID"`
}

// ChatMessage is append-only; rows are never mutated after insert.
type ChatMessage struct {
	ID              uint               `json:"id" gorm:"primaryKey"`
	SessionID       uint               `json:"session_id" gorm:"not null;index"`
	Role            string             `json:"role" gorm:"not null;check:role IN ('user','assistant')"`
	Content         string             `json:"content" gorm:"not null"`
	Recommendations RecommendationList `json:"recommendations" gorm:"type:jsonb"`
	CreatedAt       time.Time          `json:"created_at"`
}

// ChatSessionSummary is the sessions-list projection with message counts.
type ChatSessionSummary struct {
	ID            uint      `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	LastMessageAt time.Time `json:"last_message_at"`
	IsActive      bool      `json:"is_active"`
	MessageCount  int       `json:"message_count"`
}

// Database interfaces for repository pattern
type UserRepository interface {
	Create(user *User) error
	GetByID(id uint) (*User, error)
	GetByUsername(username string) (*User, error)
}

type PreferencesRepository interface {
	Upsert(prefs *UserPreferences) error
	GetByUserID(userID uint) (*UserPreferences, error)
}

type ChatSessionRepository interface {
	Create(session *ChatSession) error
	GetActive(id, userID uint) (*ChatSession, error)
	GetOwned(id, userID uint) (*ChatSession, error)
	ListByUser(userID uint) ([]ChatSessionSummary, error)
	Deactivate(id, userID uint) error
}

type ChatMessageRepository interface {
	Create(message *ChatMessage) error
	ListBySession(sessionID uint) ([]ChatMessage, error)
}

// TableName methods for custom table names
func (User) TableName() string            { return "users" }
func (UserPreferences) TableName() string { return "user_preferences" }
func (ChatSession) TableName() string     { return "chat_sessions" }
func (ChatMessage) TableName() string     { return "chat_messages" }

// Model validation methods
func (m *ChatMessage) Validate() error {
	if m.SessionID == 0 {
		return fmt.Errorf("session ID is required")
	}
	if m.Role != "user" && m.Role != "assistant" {
		return fmt.Errorf("invalid message role: %s", m.Role)
	}
	if m.Content == "" {
		return fmt.Errorf("message content is required")
	}
	return nil
}

// GORM hooks
func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	return m.Validate()
}
