package service

import (
	"context"
	"strings"
	"time"

	"civicreport-be/internal/auth"
	"civicreport-be/internal/models"
	"civicreport-be/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles accounts: registration, login, lookup and admin role
// changes. Token verification on requests lives in the middleware; the
// core treats the parsed (actorId, role) pair as ground truth.
type AuthService struct {
	users     repository.UserRepository
	guard     *auth.Guard
	jwtSecret string
	log       *zap.Logger
}

// dummyHash is a bcrypt digest of a random string, used to equalize login
// timing when the email does not resolve.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// NewAuthService wires the account service.
func NewAuthService(users repository.UserRepository, guard *auth.Guard, jwtSecret string, log *zap.Logger) *AuthService {
	return &AuthService{users: users, guard: guard, jwtSecret: jwtSecret, log: log}
}

// Register creates an account with the USER role. Emails are lowercased so
// the unique index is effectively case-insensitive; a duplicate surfaces
// as ErrConflict.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	user := &models.User{
		Name:     strings.TrimSpace(name),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
		Role:     models.RoleUser,
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	if err := user.HashPassword(); err != nil {
		return nil, err
	}

	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and mints a token carrying id and role.
// Unknown email and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// burn a comparison so unknown emails cost the same as bad passwords
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, "", models.ErrUnauthorized
	}

	if !user.ComparePassword(password) {
		return nil, "", models.ErrUnauthorized
	}

	token, err := auth.GenerateToken(s.jwtSecret, user.ID.Hex(), user.Role)
	if err != nil {
		s.log.Error("minting token failed", zap.Error(err))
		return nil, "", models.ErrInternal
	}

	return user, token, nil
}

// Me returns the account for the authenticated id.
func (s *AuthService) Me(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// SetRole changes another account's role. Admin only.
func (s *AuthService) SetRole(ctx context.Context, actorRole models.Role, userID primitive.ObjectID, role models.Role) error {
	if !s.guard.CanViewAdminData(actorRole) {
		return models.ErrForbidden
	}
	if !role.Valid() {
		return models.InvalidEnum("role", string(role))
	}
	return s.users.UpdateRole(ctx, userID, role)
}
