package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/hardware-admin/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "hardware-admin"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-that-is-long-enough-for-hs256",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
}

func TestTokenPairRoundTrip(t *testing.T) {
	manager := NewJWTManager(testConfig())
	id := Identity{UserID: 4, Email: "rep@example.com", Role: "representative", SessionID: "sess-1"}

	pair, err := manager.GenerateTokenPair(id)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	access, err := manager.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(4), access.UserID)
	assert.Equal(t, "representative", access.Role)
	assert.Equal(t, "sess-1", access.SessionID)

	refresh, err := manager.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", refresh.SessionID)
	assert.Empty(t, refresh.Role)

	_, err = manager.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = manager.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	manager := NewJWTManager(testConfig())
	token, err := manager.GenerateAccessToken(Identity{UserID: 1, SessionID: "s"})
	require.NoError(t, err)

	other := testConfig()
	other.JWT.Secret = "another-secret-that-is-long-enough-for-hs256"
	_, err = NewJWTManager(other).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	manager := NewJWTManager(testConfig())
	manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := manager.GenerateAccessToken(Identity{UserID: 1, SessionID: "s"})
	require.NoError(t, err)

	manager.now = time.Now
	_, err = manager.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc"))
	assert.Empty(t, ExtractTokenFromHeader("Bearer "))
}

func TestPasswordHashing(t *testing.T) {
	manager := NewPasswordManager(testConfig())

	hash, err := manager.HashPassword("Sturdy-Nails9")
	require.NoError(t, err)
	assert.NoError(t, manager.VerifyPassword("Sturdy-Nails9", hash))
	assert.Error(t, manager.VerifyPassword("sturdy-nails9", hash))
}

func TestValidatePassword(t *testing.T) {
	manager := NewPasswordManager(testConfig())

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"valid", "Sturdy-Nails9", true},
		{"too short", "Ab1", false},
		{"no digit", "SturdyNails", false},
		{"no upper", "sturdy-nails9", false},
		{"repeats", "Stuuurdy-Nails9", false},
		{"common", "MyPassword99", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := manager.ValidatePassword(tt.password)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrWeakPassword)
			}
		})
	}
}

func TestGenerateTemporaryPassword(t *testing.T) {
	manager := NewPasswordManager(testConfig())

	first, err := manager.GenerateTemporaryPassword()
	require.NoError(t, err)
	second, err := manager.GenerateTemporaryPassword()
	require.NoError(t, err)

	assert.Len(t, first, 14)
	assert.NoError(t, manager.ValidatePassword(first))
	assert.NotEqual(t, first, second)
}
