package models

import "time"

type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

type PreferencesRequest struct {
	CuisineType         *string `json:"cuisine_type"`
	PriceRange          *string `json:"price_range"`
	DiningStyle         *string `json:"dining_style"`
	DietaryRestrictions *string `json:"dietary_restrictions"`
	Atmosphere          *string `json:"atmosphere"`
}

type ChatMessageRequest struct {
	Message   string  `json:"message" binding:"required"`
	SessionID *uint   `json:"session_id"`
	Location  *string `json:"location"`
}

type ChatMessageResponse struct {
	SessionID       uint             `json:"session_id"`
	MessageID       uint             `json:"message_id"`
	Response        string           `json:"response"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}
