package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/saree-store/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Saree Store"},
		JWT: config.JWTConfig{
			Secret:             "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
	}
}

func TestIssueAndValidate(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	pair, err := mgr.IssuePair(7, "asha@example.com", true)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := mgr.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.True(t, claims.IsAdmin)

	refresh, err := mgr.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.False(t, refresh.IsAdmin)

	_, err = mgr.ValidateAccessToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestValidateRejectsForeignAndExpiredTokens(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	other := testConfig()
	other.JWT.Secret = "ffffffffffffffffffffffffffffffff"
	pair, err := NewJWTManager(other).IssuePair(1, "x@example.com", false)
	require.NoError(t, err)
	_, err = mgr.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)

	past := time.Now().Add(-48 * time.Hour)
	mgr.now = func() time.Time { return past }
	old, err := mgr.IssuePair(1, "x@example.com", false)
	require.NoError(t, err)
	mgr.now = func() time.Time { return time.Now().UTC() }
	_, err = mgr.ValidateAccessToken(old.AccessToken)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "abc", ExtractTokenFromHeader("bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer "))
}

func TestPasswordManager(t *testing.T) {
	pm := NewPasswordManager(bcrypt.MinCost)

	for _, bad := range []string{"short", "1234567890", "Password1"} {
		_, err := pm.HashPassword(bad)
		assert.Error(t, err, bad)
	}

	hash, err := pm.HashPassword("silk-and-zari")
	require.NoError(t, err)
	assert.NoError(t, pm.VerifyPassword("silk-and-zari", hash))
	assert.Error(t, pm.VerifyPassword("cotton", hash))
}
