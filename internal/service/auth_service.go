package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

const bcryptCost = 10

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     model.Role
}

// ProfileUpdate carries the editable contact fields of an account.
type ProfileUpdate struct {
	Name  string
	Email string
	Phone *string
}

// AuthService handles authentication and account operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string, role model.Role) (token string, user *model.User, err error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error
	ListUsers(ctx context.Context) ([]model.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account with hashed password. Email addresses are
// unique across both roles.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "name, email and password are required")
	}
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	if !in.Role.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "unknown role")
	}

	// Check if user already exists
	existing, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hashedPassword),
		Role:         in.Role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "account registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login authenticates an account of the given role and returns a signed token.
func (s *authService) Login(ctx context.Context, email, password string, role model.Role) (string, *model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, apperrors.WithMessage(apperrors.ErrValidation, "email and password are required")
	}

	user, err := s.userRepo.FindByEmailAndRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if role == model.RoleAdmin {
				return "", nil, apperrors.WithMessage(apperrors.ErrUserNotFound, "admin doesn't exist")
			}
			return "", nil, apperrors.ErrUserNotFound
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.ErrWrongPassword
	}

	token, _, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

// Authenticate verifies a bearer token. A missing token is ErrUnauthorized; a
// bad, expired or revoked one is ErrForbidden.
func (s *authService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, apperrors.ErrUnauthorized
	}

	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, apperrors.ErrForbidden
	}

	revoked, err := s.tokenStore.IsRevoked(ctx, claims.RegisteredClaims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, apperrors.ErrForbidden
	}

	return claims, nil
}

// Logout revokes the token described by claims for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apperrors.ErrUnauthorized
	}
	return s.tokenStore.Revoke(ctx, claims.RegisteredClaims.ID, claims.TTL())
}

func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UpdateProfile replaces name, email and phone. Empty name or email and a nil
// phone keep the stored value; an empty phone clears it.
func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*model.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = user.Name
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		email = user.Email
	}
	phone := user.Phone
	if in.Phone != nil {
		phone = strings.TrimSpace(*in.Phone)
	}

	if email != user.Email {
		other, err := s.userRepo.FindByEmail(ctx, email)
		if err == nil && other != nil && other.ID != user.ID {
			return nil, apperrors.ErrDuplicateEmail
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check email: %w", err)
		}
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, name, email, phone); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	user.Name, user.Email, user.Phone = name, email, phone
	return user, nil
}

// ChangePassword stores a bcrypt hash of newPassword for userID.
func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	if newPassword == "" {
		return apperrors.WithMessage(apperrors.ErrValidation, "password is required")
	}

	if _, err := s.GetProfile(ctx, userID); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	slog.InfoContext(ctx, "password changed", "user_id", userID)
	return nil
}

// ListUsers returns shopper accounts, newest first.
func (s *authService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.ListByRole(ctx, model.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
