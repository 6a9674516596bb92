package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/kevinaaaquil/novels/apperr"
	"github.com/kevinaaaquil/novels/models"
	"golang.org/x/crypto/bcrypt"
)

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticator verifies email/password credentials.
type Authenticator struct {
	users UserStore
	// dummyHash is compared against when the user does not exist so that an
	// unknown email costs as much as a wrong password.
	dummyHash []byte
}

func NewAuthenticator(users UserStore) (*Authenticator, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword(secret, bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: dummy hash: %w", err)
	}
	return &Authenticator{users: users, dummyHash: hash}, nil
}

// Verify returns the principal for valid credentials. Unknown emails and wrong
// passwords both return nil, nil; only store faults return an error.
func (a *Authenticator) Verify(ctx context.Context, email, password string) (*models.Principal, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil
	}
	user, err := a.users.UserByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("verify credentials: %w", err))
	}
	if user == nil || user.Password == "" {
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil
	}
	return &models.Principal{ID: user.ID.Hex(), Email: user.Email}, nil
}
