package service

import (
	"context"
	"log/slog"

	"github.com/Sanket3107/Rupaya/internal/auth"
	"github.com/Sanket3107/Rupaya/internal/models"
	"github.com/Sanket3107/Rupaya/internal/storage"
)

// Session is a signed-in user and their access token.
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService handles registration, login and logout.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	resolver      *auth.Resolver
	store         storage.Store
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, resolver *auth.Resolver, store storage.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		resolver:      resolver,
		store:         store,
		logger:        logger,
	}
}

// Register creates a new user account and signs it in.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*Session, error) {
	s.logger.Info("Register request", "email", email)

	user, err := s.authenticator.Register(ctx, email, name, password)
	if err != nil {
		s.logger.Error("Registration failed", "email", email, "error", err)
		return nil, err
	}

	session, err := s.session(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return session, nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	s.logger.Info("Login request", "email", email)

	if email == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return nil, err
	}

	session, err := s.session(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return session, nil
}

// Logout revokes the presented token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.resolver.Revoke(ctx, token); err != nil {
		s.logger.Warn("Logout failed", "error", err)
		return err
	}
	s.logger.Info("Logout request")
	return nil
}

// CurrentUser returns the authenticated user's account.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	var user *models.User
	err := s.store.View(ctx, func(tx storage.Tx) error {
		var err error
		user, err = tx.GetUserByID(ctx, userID)
		return err
	})
	if err != nil {
		s.logger.Warn("GetCurrentUser failed", "user_id", userID, "error", err)
		return nil, err
	}
	return user, nil
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}
