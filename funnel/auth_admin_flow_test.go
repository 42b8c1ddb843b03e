package funnel

import (
	"testing"
	"time"

	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/app/services"
	"github.com/reviewloop/reviewloop/models"
	"github.com/reviewloop/reviewloop/repository"
	testingutil "github.com/reviewloop/reviewloop/testing"
	"github.com/reviewloop/reviewloop/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret-key-that-is-long-enough-for-hmac"

func TestAdminAuthFlowLogin(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		adminRepo := repository.NewAdminRepository(testDB.DB)
		tokenService, err := services.NewTokenService(time.Hour, 24*time.Hour, "test-issuer", "test-audience", false, "", "", testJWTSecret)
		require.NoError(t, err)

		flow := NewAdminAuthFlow(adminRepo, tokenService, time.Hour)

		admin, err := fixtures.CreateTestAdmin("ops-admin", "SecurePass123!")
		require.NoError(t, err)
		metadata := NewClientMetadata("203.0.113.10", "test-agent/1.0")

		t.Run("SuccessfulLogin", func(t *testing.T) {
			resp, err := flow.Login(ctx, &dto.AdminLoginRequest{
				Username: "ops-admin",
				Password: "SecurePass123!",
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, admin.ID, resp.Admin.ID)
			assert.Equal(t, "ops-admin", resp.Admin.Username)
			assert.NotEmpty(t, resp.Session.AccessToken)
			assert.NotEmpty(t, resp.Session.RefreshToken)
			assert.Equal(t, "Bearer", resp.Session.TokenType)
			assert.Equal(t, int(time.Hour.Seconds()), resp.Session.ExpiresIn)

			// The issued token round-trips through validation
			claims, err := tokenService.ValidateAdminToken(resp.Session.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, admin.ID, claims.AdminID)
			assert.Equal(t, "access", claims.TokenType)

			// Login touches last_login_at
			var stored models.Admin
			require.NoError(t, testDB.DB.First(&stored, admin.ID).Error)
			assert.NotNil(t, stored.LastLoginAt)
		})

		t.Run("WrongPassword", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.AdminLoginRequest{
				Username: "ops-admin",
				Password: "WrongPass123!",
			}, metadata)
			assert.ErrorIs(t, err, ErrIncorrectPassword)
		})

		t.Run("UnknownUsername", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.AdminLoginRequest{
				Username: "nobody",
				Password: "SecurePass123!",
			}, metadata)
			assert.ErrorIs(t, err, ErrAdminNotFound)
		})

		t.Run("InactiveAccount", func(t *testing.T) {
			inactive, err := fixtures.CreateTestAdmin("inactive-admin", "SecurePass123!")
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(inactive).Update("is_active", false).Error)

			_, err = flow.Login(ctx, &dto.AdminLoginRequest{
				Username: "inactive-admin",
				Password: "SecurePass123!",
			}, metadata)
			assert.ErrorIs(t, err, ErrAdminInactive)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()

		adminRepo := repository.NewAdminRepository(testDB.DB)
		tokenService, err := services.NewTokenService(time.Hour, 24*time.Hour, "test-issuer", "test-audience", false, "", "", testJWTSecret)
		require.NoError(t, err)

		flow := NewAdminAuthFlow(adminRepo, tokenService, time.Hour)

		t.Run("CreatesMissingAccount", func(t *testing.T) {
			admin, err := flow.EnsureAdmin(ctx, "bootstrap", "BootstrapPass1!")
			require.NoError(t, err)
			require.NotZero(t, admin.ID)
			assert.True(t, utils.IsTrue(admin.IsActive))

			err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("BootstrapPass1!"))
			assert.NoError(t, err)
		})

		t.Run("ExistingAccountLeftUntouched", func(t *testing.T) {
			first, err := flow.EnsureAdmin(ctx, "bootstrap", "BootstrapPass1!")
			require.NoError(t, err)

			// A different password must not overwrite the stored hash
			second, err := flow.EnsureAdmin(ctx, "bootstrap", "DifferentPass1!")
			require.NoError(t, err)
			assert.Equal(t, first.ID, second.ID)
			assert.Equal(t, first.PasswordHash, second.PasswordHash)
		})

		return nil
	})
	require.NoError(t, err)
}
