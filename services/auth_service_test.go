package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"support-chat/auth"
	"support-chat/errors"
)

func TestAuthService_Login(t *testing.T) {
	req := require.New(t)
	hash, err := auth.HashPassword("correct horse battery staple")
	req.NoError(err)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	service := NewAuthService(hash, tokens)

	// When logging in with the right password
	token, err := service.Login("correct horse battery staple")
	req.NoError(err)
	req.NotEmpty(token)

	// Then the issued token carries the admin role
	claims, err := tokens.Validate(string(token))
	req.NoError(err)
	req.Equal("admin", claims.Role)
}

func TestAuthService_Login_Wrong_Password(t *testing.T) {
	req := require.New(t)
	hash, err := auth.HashPassword("the real password")
	req.NoError(err)

	service := NewAuthService(hash, auth.NewTokenManager("test-secret", time.Hour))

	_, err = service.Login("a guess")
	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func TestAuthService_Login_Corrupt_Hash(t *testing.T) {
	req := require.New(t)
	service := NewAuthService("not-a-hash", auth.NewTokenManager("test-secret", time.Hour))

	// A broken provisioned hash must read as a failed login, not a panic
	_, err := service.Login("anything")
	req.ErrorIs(err, errors.ErrInvalidPassword)
}
