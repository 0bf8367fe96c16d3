// Package auth issues and verifies bearer tokens and resolves request
// principals. Tokens are HS256 JWTs carrying the user id as subject and
// the email as a private claim.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"golang.org/x/crypto/bcrypt"

	"github.com/kmazur/interview-copilot/internal/models"
	"github.com/kmazur/interview-copilot/internal/store"
)

var (
	// ErrInvalidCredentials covers unknown emails and wrong
	// passwords alike, so responses do not reveal which it was.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken covers missing, malformed and expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrEmailTaken is returned when registering a known email.
	ErrEmailTaken = errors.New("email already registered")
)

// Service handles registration, login and token verification.
type Service struct {
	users  store.UserStore
	secret []byte
	expiry time.Duration
}

// NewService creates an auth service. expiry bounds token lifetime.
func NewService(users store.UserStore, secret string, expiry time.Duration) *Service {
	return &Service{
		users:  users,
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: string(hash),
		FullName:       fullName,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Duration, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", 0, ErrInvalidCredentials
		}
		return "", 0, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive {
		return "", 0, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", 0, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", 0, err
	}
	return token, s.expiry, nil
}

func (s *Service) issueToken(user *models.User) (string, error) {
	now := time.Now()
	tok, err := jwt.NewBuilder().
		Subject(user.ID.String()).
		Claim("email", user.Email).
		IssuedAt(now).
		Expiration(now.Add(s.expiry)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// VerifyToken validates a token and returns the principal it encodes.
func (s *Service) VerifyToken(token string) (Principal, error) {
	tok, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, s.secret),
		jwt.WithValidate(true),
	)
	if err != nil {
		return Anonymous, ErrInvalidToken
	}

	sub := tok.Subject()
	emailClaim, _ := tok.Get("email")
	email, _ := emailClaim.(string)

	if sub == "" || email == "" {
		return Anonymous, ErrInvalidToken
	}

	return Principal{Authenticated: true, UserID: sub, Email: email}, nil
}

// Resolve is the single authentication-resolution step. It accepts the
// raw Authorization header value (or a bare token from a query
// parameter) and yields either an authenticated principal or Anonymous
// with ErrInvalidToken describing why.
func (s *Service) Resolve(authorization string) (Principal, error) {
	if authorization == "" {
		return Anonymous, ErrInvalidToken
	}

	token := authorization
	if strings.HasPrefix(authorization, "Bearer ") {
		token = strings.TrimPrefix(authorization, "Bearer ")
	}

	return s.VerifyToken(token)
}

// GetUser loads the account behind an authenticated principal.
func (s *Service) GetUser(ctx context.Context, p Principal) (*models.User, error) {
	if !p.Authenticated {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUserByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}
