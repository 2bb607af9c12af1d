//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"support-chat/auth"
	"support-chat/errors"
)

type IAuthService interface {
	Login(password string) (Token, error)
}

type Token string

// AuthService authenticates the single admin operator against the hash
// provisioned through configuration. There is no user database; visitors
// never authenticate.
type AuthService struct {
	passwordHash string
	tokens       auth.TokenManager
}

func NewAuthService(passwordHash string, tokens auth.TokenManager) *AuthService {
	return &AuthService{passwordHash: passwordHash, tokens: tokens}
}

func (s *AuthService) Login(password string) (Token, error) {
	// 1. Compare the provided password with the provisioned hash
	match, err := auth.ComparePassword(password, s.passwordHash)
	if err != nil || !match {
		// Generic error, no detail about what part failed
		return "", errors.ErrInvalidPassword
	}

	// 2. Issue the JWT token
	token, err := s.tokens.Generate("admin")
	if err != nil {
		return "", err
	}
	return Token(token), nil
}
