package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskaza-api/internal/models"
	"github.com/yukikurage/taskaza-api/internal/utils"
)

const defaultVerificationTTL = time.Hour

type recordingNotifier struct {
	tokens []string
	err    error
}

func (n *recordingNotifier) NotifyVerification(_ context.Context, _ *models.User, token string, _ time.Time) error {
	if n.err != nil {
		return n.err
	}
	n.tokens = append(n.tokens, token)
	return nil
}

func signupWithEmail(t *testing.T, env serviceTestEnv) *models.User {
	t.Helper()
	user, err := env.authService.Signup(context.Background(), SignupInput{
		Username: "verifyuser",
		Password: "secret",
		Email:    strPtr("verify@example.com"),
	})
	require.NoError(t, err)
	return user
}

func TestVerificationService_Flow(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	env.verification.now = func() time.Time { return now }

	user := signupWithEmail(t, env)

	result, err := env.verification.RequestVerification(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, now.Add(time.Hour).Equal(result.ExpiresAt))
	assert.Equal(t, []string{result.Token}, env.notifier.tokens)

	stored, err := env.userRepo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.VerificationTokenHash)
	assert.Equal(t, utils.Fingerprint(result.Token), *stored.VerificationTokenHash)

	verified, err := env.verification.VerifyEmail(ctx, result.Token)
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)

	// Single use.
	_, err = env.verification.VerifyEmail(ctx, result.Token)
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)

	stored, err = env.userRepo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)
	assert.Nil(t, stored.VerificationTokenHash)
	assert.Nil(t, stored.VerificationTokenExpiresAt)

	_, err = env.verification.RequestVerification(ctx, stored)
	assert.ErrorIs(t, err, ErrEmailAlreadyVerified)
}

func TestVerificationService_ExpiredToken(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	issuedAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	env.verification.now = func() time.Time { return issuedAt }

	user := signupWithEmail(t, env)
	result, err := env.verification.RequestVerification(ctx, user)
	require.NoError(t, err)

	env.verification.now = func() time.Time { return issuedAt.Add(time.Hour + time.Second) }
	_, err = env.verification.VerifyEmail(ctx, result.Token)
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)

	stored, err := env.userRepo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.EmailVerified)
}

func TestVerificationService_NewRequestReplacesToken(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	user := signupWithEmail(t, env)
	first, err := env.verification.RequestVerification(ctx, user)
	require.NoError(t, err)
	second, err := env.verification.RequestVerification(ctx, user)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	_, err = env.verification.VerifyEmail(ctx, first.Token)
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)

	_, err = env.verification.VerifyEmail(ctx, second.Token)
	assert.NoError(t, err)
}

func TestVerificationService_RequiresEmail(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	user, err := env.authService.Signup(ctx, SignupInput{Username: "noemail", Password: "secret"})
	require.NoError(t, err)

	_, err = env.verification.RequestVerification(ctx, user)
	assert.ErrorIs(t, err, ErrEmailMissing)
}

func TestVerificationService_UnknownToken(t *testing.T) {
	env := setupServiceTestEnv(t)

	_, err := env.verification.VerifyEmail(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)

	_, err = env.verification.VerifyEmail(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)
}

func TestVerificationService_NotifierFailure(t *testing.T) {
	env := setupServiceTestEnv(t)
	env.notifier.err = errors.New("smtp down")

	user := signupWithEmail(t, env)
	_, err := env.verification.RequestVerification(context.Background(), user)
	assert.Error(t, err)
}

func TestVerificationService_StaleRequestAfterVerify(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	user := signupWithEmail(t, env)
	result, err := env.verification.RequestVerification(ctx, user)
	require.NoError(t, err)

	stale, err := env.authService.ResolveUser(ctx, user.Username)
	require.NoError(t, err)

	_, err = env.verification.VerifyEmail(ctx, result.Token)
	require.NoError(t, err)

	_, err = env.verification.RequestVerification(ctx, stale)
	assert.ErrorIs(t, err, ErrEmailAlreadyVerified)

	stored, err := env.userRepo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)
	assert.Nil(t, stored.VerificationTokenHash)
}

func TestVerificationService_TokenConsumedOnce(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	user := signupWithEmail(t, env)
	result, err := env.verification.RequestVerification(ctx, user)
	require.NoError(t, err)

	// Both requests have looked the token up before either writes.
	pending, err := env.userRepo.FindByVerificationTokenHash(ctx, utils.Fingerprint(result.Token))
	require.NoError(t, err)
	now := time.Now().UTC()

	first, err := env.userRepo.ConsumeVerificationToken(ctx, pending.ID, utils.Fingerprint(result.Token), now)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := env.userRepo.ConsumeVerificationToken(ctx, pending.ID, utils.Fingerprint(result.Token), now)
	require.NoError(t, err)
	assert.False(t, second)
}
