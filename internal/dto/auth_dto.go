package dto

import "time"

type RegisterRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=150"`
	Password string `json:"password" form:"password"`
	Confirm  string `json:"confirm" form:"confirm"`
}

type RegisterResponse struct {
	Id    uint   `json:"id"`
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=150"`
	Password string `json:"password" form:"password" validate:"required"`
}

type UserDTO struct {
	Id    uint   `json:"id"`
	Email string `json:"email"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserDTO   `json:"user"`
}
