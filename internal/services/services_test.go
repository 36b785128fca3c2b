package services

import (
	"testing"

	"github.com/yukikurage/taskaza-api/internal/auth"
	"github.com/yukikurage/taskaza-api/internal/repository"
	"github.com/yukikurage/taskaza-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db           *gorm.DB
	hasher       *auth.Hasher
	userRepo     repository.UserRepository
	authService  *AuthService
	apiKeys      *APIKeyService
	verification *VerificationService
	notifier     *recordingNotifier
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	hasher := auth.NewHasher(bcrypt.MinCost)
	userRepo := repository.NewUserRepository(db)
	notifier := &recordingNotifier{}

	return serviceTestEnv{
		db:           db,
		hasher:       hasher,
		userRepo:     userRepo,
		authService:  NewAuthService(userRepo, hasher),
		apiKeys:      NewAPIKeyService(repository.NewAPIKeyRepository(db), hasher),
		verification: NewVerificationService(userRepo, notifier, defaultVerificationTTL),
		notifier:     notifier,
	}
}

func strPtr(s string) *string {
	return &s
}
