// Package auth guards the API behind the single operator credential. There
// is no user table: the shop runs with one configured login.
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/starlink-stock/stockpro/internal/shared"
)

// Service validates the fixed operator credential.
type Service struct {
	email        string
	passwordHash []byte
}

// NewService constructs a Service from an already hashed password.
func NewService(email, passwordHash string) *Service {
	return &Service{email: strings.ToLower(email), passwordHash: []byte(passwordHash)}
}

// NewServiceFromPassword hashes the plain password at startup. Meant for
// development setups where only ADMIN_PASSWORD is configured.
func NewServiceFromPassword(email, password string) (*Service, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash admin password: %w", err)
	}
	return NewService(email, string(hash)), nil
}

// Authenticate validates email/password against the configured credential.
func (s *Service) Authenticate(ctx context.Context, email, password string) error {
	match := subtle.ConstantTimeCompare([]byte(strings.ToLower(email)), []byte(s.email)) == 1
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil || !match {
		return shared.ErrInvalidCredentials
	}
	return nil
}

// Email returns the configured operator email.
func (s *Service) Email() string {
	return s.email
}
