package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/taskaza-api/internal/auth"
	"github.com/yukikurage/taskaza-api/internal/constants"
	"github.com/yukikurage/taskaza-api/internal/models"
	"github.com/yukikurage/taskaza-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrEmailTaken           = errors.New("email already registered")
	ErrAccountConflict      = errors.New("account conflicts with an existing user")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrInvalidUsername      = errors.New("username must be between 3 and 50 characters")
	ErrUsernameImmutable    = errors.New("username cannot be changed")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrPasswordTooLong      = errors.New("password too long")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

var validate = validator.New()

// SecretHasher hashes and verifies passwords and API key secrets.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// AuthService handles account and authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	hasher   SecretHasher
	// dummyHash is verified against when the username is unknown so that
	// failed logins take the same time either way.
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, hasher SecretHasher) *AuthService {
	dummyHash, _ := hasher.Hash("taskaza-timing-equalizer")
	return &AuthService{
		userRepo:  userRepo,
		hasher:    hasher,
		dummyHash: dummyHash,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username    string
	Password    string
	Email       *string
	DisplayName *string
}

// Signup creates a new user.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if len(username) < constants.MinUsernameLength || len(username) > constants.MaxUsernameLength {
		return nil, ErrInvalidUsername
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if email != nil {
		if err := s.ensureEmailAvailable(ctx, *email, 0); err != nil {
			return nil, err
		}
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrSecretTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		DisplayName:  normalizeOptional(input.DisplayName),
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent signup won the race for a unique column.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.signupConflict(ctx, username, email)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateUser, err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(input.Password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ResolveUser maps the subject of a verified bearer token back to its user.
// It has no side effects.
func (s *AuthService) ResolveUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	return user, nil
}

// UpdateProfileInput carries profile changes. A nil field is left untouched;
// an empty Email or DisplayName clears it.
type UpdateProfileInput struct {
	Username    *string
	Email       *string
	DisplayName *string
}

// UpdateProfile applies profile changes to user. Changing the email resets
// its verification state.
func (s *AuthService) UpdateProfile(ctx context.Context, user *models.User, input UpdateProfileInput) (*models.User, error) {
	// The username is the bearer token subject, so it stays fixed.
	if input.Username != nil && strings.TrimSpace(*input.Username) != user.Username {
		return nil, ErrUsernameImmutable
	}

	var columns []string
	if input.Email != nil {
		email, err := normalizeEmail(input.Email)
		if err != nil {
			return nil, err
		}
		if !sameOptional(email, user.Email) {
			if email != nil {
				if err := s.ensureEmailAvailable(ctx, *email, user.ID); err != nil {
					return nil, err
				}
			}
			user.Email = email
			user.EmailVerified = false
			user.VerificationTokenHash = nil
			user.VerificationTokenExpiresAt = nil
			columns = append(columns, "email", "email_verified", "verification_token_hash", "verification_token_expires_at")
		}
	}

	if input.DisplayName != nil {
		user.DisplayName = normalizeOptional(input.DisplayName)
		columns = append(columns, "display_name")
	}

	if err := s.userRepo.UpdateColumns(ctx, user, columns...); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteAccount removes user together with their tasks and API keys.
func (s *AuthService) DeleteAccount(ctx context.Context, user *models.User) error {
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// signupConflict reports which unique column a failed insert collided on.
func (s *AuthService) signupConflict(ctx context.Context, username string, email *string) error {
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	}
	if email != nil {
		if _, err := s.userRepo.FindByEmail(ctx, *email); err == nil {
			return ErrEmailTaken
		}
	}
	return ErrAccountConflict
}

func (s *AuthService) ensureEmailAvailable(ctx context.Context, email string, ownerID uint64) error {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		if existing.ID != ownerID {
			return ErrEmailTaken
		}
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}
	return nil
}

// normalizeEmail lowercases and validates email. An empty value yields nil.
func normalizeEmail(email *string) (*string, error) {
	if email == nil {
		return nil, nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*email))
	if normalized == "" {
		return nil, nil
	}
	if err := validate.Var(normalized, "email"); err != nil {
		return nil, ErrInvalidEmail
	}
	return &normalized, nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func sameOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
