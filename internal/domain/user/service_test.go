package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/pkg/auth"
	"github.com/your-org/hardware-admin/internal/pkg/logger"
	"github.com/your-org/hardware-admin/internal/pkg/testdb"
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

func setupUserTest(t *testing.T) (*Service, *AdminService, *User) {
	t.Helper()
	db := testdb.Open(t, &User{})
	cfg := testConfig()
	admins := NewAdminService(db, cfg, logger.Discard())

	created, err := admins.CreateUser(&CreateUserRequest{
		Email: " Owner@Example.com ", Password: "Sturdy-Nails9", FirstName: "Olive", LastName: "Owner", Role: RoleAdmin,
	})
	require.NoError(t, err)

	return NewService(db, cfg, logger.Discard()), admins, created.User
}

func TestLoginOpensNewSession(t *testing.T) {
	svc, _, owner := setupUserTest(t)
	assert.Equal(t, "owner@example.com", owner.Email)

	first, err := svc.Login(&LoginRequest{Email: "OWNER@example.com", Password: "Sturdy-Nails9"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.SessionID)
	assert.NotNil(t, first.User.LastLoginAt)

	claims, err := svc.ValidateAccessToken(first.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, claims.UserID)
	assert.Equal(t, string(RoleAdmin), claims.Role)
	assert.Equal(t, first.SessionID, claims.SessionID)

	second, err := svc.Login(&LoginRequest{Email: "owner@example.com", Password: "Sturdy-Nails9"})
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID, "every login gets its own cart session")

	_, err = svc.Login(&LoginRequest{Email: "owner@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "Sturdy-Nails9"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshKeepsSessionAndRereadsRole(t *testing.T) {
	svc, admins, owner := setupUserTest(t)

	created, err := admins.CreateUser(&CreateUserRequest{Email: "rep@example.com", FirstName: "Rae", Role: RoleRepresentative})
	require.NoError(t, err)
	require.NotEmpty(t, created.TemporaryPassword)

	login, err := svc.Login(&LoginRequest{Email: "rep@example.com", Password: created.TemporaryPassword})
	require.NoError(t, err)

	_, err = admins.UpdateUserRole(owner.ID, created.User.ID, &UserRoleUpdateRequest{Role: RoleAdmin})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, login.SessionID, refreshed.SessionID)

	claims, err := svc.ValidateAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, string(RoleAdmin), claims.Role)

	_, err = svc.RefreshToken(login.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	inactive := false
	_, err = admins.UpdateUserStatus(owner.ID, created.User.ID, &UserStatusUpdateRequest{IsActive: &inactive})
	require.NoError(t, err)
	_, err = svc.RefreshToken(login.RefreshToken)
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestChangePassword(t *testing.T) {
	svc, _, owner := setupUserTest(t)

	err := svc.ChangePassword(owner.ID, &ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "Brass-Hinge42"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(owner.ID, &ChangePasswordRequest{CurrentPassword: "Sturdy-Nails9", NewPassword: "short"})
	assert.ErrorIs(t, err, auth.ErrWeakPassword)

	require.NoError(t, svc.ChangePassword(owner.ID, &ChangePasswordRequest{CurrentPassword: "Sturdy-Nails9", NewPassword: "Brass-Hinge42"}))
	_, err = svc.Login(&LoginRequest{Email: "owner@example.com", Password: "Brass-Hinge42"})
	assert.NoError(t, err)
}

func TestAdminGuards(t *testing.T) {
	_, admins, owner := setupUserTest(t)

	_, err := admins.CreateUser(&CreateUserRequest{Email: "owner@example.com", FirstName: "Dup", Role: RoleRepresentative})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = admins.CreateUser(&CreateUserRequest{Email: "x@example.com", FirstName: "X", Role: "manager"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	second, err := admins.CreateUser(&CreateUserRequest{Email: "second@example.com", FirstName: "Sam", Role: RoleAdmin})
	require.NoError(t, err)

	_, err = admins.UpdateUserRole(owner.ID, owner.ID, &UserRoleUpdateRequest{Role: RoleRepresentative})
	assert.ErrorIs(t, err, ErrSelfChange)

	// the owner is the only other admin, so the second one can be demoted
	demoted, err := admins.UpdateUserRole(owner.ID, second.User.ID, &UserRoleUpdateRequest{Role: RoleRepresentative})
	require.NoError(t, err)
	assert.Equal(t, RoleRepresentative, demoted.Role)

	// and now the second cannot demote the last admin
	_, err = admins.UpdateUserRole(second.User.ID, owner.ID, &UserRoleUpdateRequest{Role: RoleRepresentative})
	assert.ErrorIs(t, err, ErrLastAdmin)

	inactive := false
	_, err = admins.UpdateUserStatus(second.User.ID, owner.ID, &UserStatusUpdateRequest{IsActive: &inactive})
	assert.ErrorIs(t, err, ErrLastAdmin)

	_, err = admins.GetUser(999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUsersFilters(t *testing.T) {
	_, admins, _ := setupUserTest(t)
	_, err := admins.CreateUser(&CreateUserRequest{Email: "rae@example.com", FirstName: "Rae", LastName: "Counter", Role: RoleRepresentative})
	require.NoError(t, err)
	_, err = admins.CreateUser(&CreateUserRequest{Email: "tom@example.com", FirstName: "Tom", Role: RoleRepresentative})
	require.NoError(t, err)

	reps, err := admins.GetUsers(&UserListRequest{Page: 1, Limit: 20, Role: "representative"})
	require.NoError(t, err)
	assert.Len(t, reps.Users, 2)

	searched, err := admins.GetUsers(&UserListRequest{Page: 1, Limit: 20, Search: "COUNTER"})
	require.NoError(t, err)
	require.Len(t, searched.Users, 1)
	assert.Equal(t, "rae@example.com", searched.Users[0].Email)

	paged, err := admins.GetUsers(&UserListRequest{Page: 1, Limit: 2, SortBy: "email", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, paged.Users, 2)
	assert.Equal(t, "owner@example.com", paged.Users[0].Email)
	assert.True(t, paged.Pagination.HasNext)

	_, err = admins.GetUsers(&UserListRequest{Page: 1, Limit: 20, Role: "manager"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	counts, err := admins.CountByRole()
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[RoleAdmin])
	assert.Equal(t, int64(2), counts[RoleRepresentative])
}

func TestResetPassword(t *testing.T) {
	svc, admins, owner := setupUserTest(t)

	password, err := admins.ResetPassword(owner.ID)
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Email: "owner@example.com", Password: "Sturdy-Nails9"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(&LoginRequest{Email: "owner@example.com", Password: password})
	assert.NoError(t, err)
}
