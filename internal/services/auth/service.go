// Package auth handles operator (admin) login. Players have no accounts; an
// admin session only unlocks read-only operational endpoints and never
// grants control over a registration.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/factionboard/internal/dependencies/clock"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrAdminDisabled      = errors.New("admin login is not configured")
)

const (
	issuer  = "factionboard"
	subject = "admin"
)

// Session is an issued admin token
type Session struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Config holds configuration for the auth service
type Config struct {
	// PasswordHash is a bcrypt hash of the admin password. Empty disables
	// admin login.
	PasswordHash string
	// TokenSecret signs session tokens
	TokenSecret     []byte
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 12 * time.Hour,
	}
}

// Service issues and validates admin session tokens
type Service struct {
	clock           clock.Clock
	passwordHash    []byte
	tokenSecret     []byte
	sessionDuration time.Duration
}

// New creates a new auth Service
func New(clock clock.Clock, cfg Config) (*Service, error) {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	if cfg.PasswordHash != "" && len(cfg.TokenSecret) == 0 {
		return nil, errors.New("auth: token secret is required when admin login is enabled")
	}
	return &Service{
		clock:           clock,
		passwordHash:    []byte(cfg.PasswordHash),
		tokenSecret:     cfg.TokenSecret,
		sessionDuration: cfg.SessionDuration,
	}, nil
}

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}
	return string(hash), nil
}

// Enabled reports whether admin login is configured
func (s *Service) Enabled() bool {
	return len(s.passwordHash) > 0
}

// Login checks the admin password and issues a session token
func (s *Service) Login(password string) (*Session, error) {
	if !s.Enabled() {
		return nil, ErrAdminDisabled
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.clock.Now()
	expires := now.Add(s.sessionDuration)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.tokenSecret)
	if err != nil {
		return nil, fmt.Errorf("sign admin token: %w", err)
	}

	return &Session{Token: token, IssuedAt: now, ExpiresAt: expires}, nil
}

// ValidateToken verifies the signature and expiry of an admin token
func (s *Service) ValidateToken(token string) (*Session, error) {
	if !s.Enabled() {
		return nil, ErrAdminDisabled
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.tokenSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	session := &Session{Token: token, ExpiresAt: claims.ExpiresAt.UTC()}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.UTC()
	}
	return session, nil
}
