// Package auth hashes passwords and tracks the logged-in user in a signed
// cookie session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/sujalbistaa/postboard/internal/models"
	"github.com/sujalbistaa/postboard/internal/store"
)

const userIDKey = "user_id"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrBlankField is returned when a username or email is only whitespace.
	ErrBlankField = errors.New("username and email must not be blank")
)

// UserStore is the subset of the store the manager needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Manager registers and authenticates users.
type Manager struct {
	users UserStore
	cost  int
	// dummyHash is compared against when the email is unknown so both
	// failure paths spend the same bcrypt time.
	dummyHash []byte
}

func NewManager(users UserStore, cost int) (*Manager, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}
	return &Manager{users: users, cost: cost, dummyHash: dummy}, nil
}

// Register stores a new user with a bcrypt password hash.
// A taken username or email yields store.ErrDuplicate.
func (m *Manager) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" || email == "" {
		return nil, ErrBlankField
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := m.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user whose email and password both match.
func (m *Manager) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := m.users.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(m.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// EstablishSession replaces the session contents with userID.
// The caller saves the session.
func EstablishSession(c *gin.Context, userID uint) {
	s := sessions.Default(c)
	s.Clear()
	s.Set(userIDKey, userID)
}

// CurrentUserID reports the logged-in user, if any.
func CurrentUserID(c *gin.Context) (uint, bool) {
	id, ok := sessions.Default(c).Get(userIDKey).(uint)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// ClearSession forgets the logged-in user. The caller saves the session.
func ClearSession(c *gin.Context) {
	sessions.Default(c).Delete(userIDKey)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
