package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/domain/product"
	"github.com/your-org/hardware-admin/internal/domain/user"
	"github.com/your-org/hardware-admin/internal/pkg/auth"
	"github.com/your-org/hardware-admin/internal/pkg/logger"
	"github.com/your-org/hardware-admin/internal/pkg/testdb"
)

func TestMigrateAndSeed(t *testing.T) {
	db := testdb.Open(t)
	cfg := &config.Config{
		App:      config.AppConfig{SeedAdminEmail: "owner@store.test", SeedAdminPassword: "Counter2026"},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
	migration := NewMigration(db, cfg, logger.Discard())

	require.NoError(t, migration.RunAutoMigrations())
	require.NoError(t, migration.CreateIndexes())
	require.NoError(t, migration.SeedInitialData())
	require.NoError(t, migration.SeedInitialData())

	var admins []user.User
	require.NoError(t, db.Where("role = ?", user.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "owner@store.test", admins[0].Email)
	assert.True(t, admins[0].IsActive)
	assert.NoError(t, auth.NewPasswordManager(cfg).VerifyPassword("Counter2026", admins[0].Password))

	var categories int64
	require.NoError(t, db.Model(&product.Category{}).Count(&categories).Error)
	assert.Equal(t, int64(6), categories)

	migration.GetTableInfo()
}

func TestSeedRejectsWeakAdminPassword(t *testing.T) {
	db := testdb.Open(t, &user.User{}, &product.Category{})
	cfg := &config.Config{
		App:      config.AppConfig{SeedAdminEmail: "owner@store.test", SeedAdminPassword: "admin123"},
		Security: config.SecurityConfig{BcryptCost: 4},
	}

	err := NewMigration(db, cfg, logger.Discard()).SeedInitialData()
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
}
