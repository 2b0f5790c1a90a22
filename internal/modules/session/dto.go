package session

import "factorydesk/internal/domain"

type LoginRequest struct {
	Role        string `json:"role" binding:"required,oneof=ADMIN USER"`
	PersonnelID string `json:"personnelId"`
}

type LoginResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}
