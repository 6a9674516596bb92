package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kevinaaaquil/novels/apperr"
	"github.com/kevinaaaquil/novels/models"
	"github.com/kevinaaaquil/novels/store"
	"github.com/kevinaaaquil/novels/validate"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const msgEmailInUse = "Email already in use"

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Accounts struct {
	users UserStore
	now   func() time.Time
}

func NewAccounts(users UserStore) *Accounts {
	return &Accounts{users: users, now: time.Now}
}

// Signup creates a credentials account. A missing field or a taken email is a
// validation error.
func (a *Accounts) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)

	required := &validate.Validator{}
	required.Required("name", name).
		Required("email", email).
		Required("password", in.Password)
	if err := required.Err("Missing fields"); err != nil {
		return nil, err
	}
	format := &validate.Validator{}
	format.Email("email", email).
		MaxLen("name", name, 100)
	if err := format.Err("Invalid fields"); err != nil {
		return nil, err
	}

	existing, err := a.users.UserByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("signup: %w", err))
	}
	if existing != nil {
		return nil, apperr.ValidationError(msgEmailInUse)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("signup: hash password: %w", err))
	}
	now := a.now()
	user := &models.User{
		Name:      name,
		Email:     email,
		Password:  string(hash),
		Provider:  models.ProviderCredentials,
		Novels:    []models.NovelRef{},
		History:   []models.NovelRef{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := a.users.CreateUser(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		// lost a race with a concurrent signup for the same email
		return nil, apperr.ValidationError(msgEmailInUse)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("signup: %w", err))
	}
	user.ID = id
	return user, nil
}

// Profile returns the user behind an authenticated principal.
func (a *Accounts) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := a.users.UserByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("profile: %w", err))
	}
	if user == nil {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}
