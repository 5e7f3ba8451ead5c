package config

import (
	"io"
	"testing"

	"loan-backend/internal/adapters/persistence/models"
	"loan-backend/internal/adapters/persistence/testdb"
	"loan-backend/internal/pkg/password"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeder_Run(t *testing.T) {
	db := testdb.New(t)
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &Config{AppMode: "dev", Admin: AdminConfig{Username: "operator", Password: "s3cret"}}

	seeder := NewSeeder(db, cfg, log)
	require.NoError(t, seeder.Run())
	// second run is a no-op
	require.NoError(t, seeder.Run())

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "operator", users[0].Username)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.True(t, password.Verify("s3cret", users[0].Password))

	var customers int64
	require.NoError(t, db.Model(&models.Customer{}).Count(&customers).Error)
	assert.Equal(t, int64(3), customers)
}

func TestSeeder_ProdSkipsDemoCustomers(t *testing.T) {
	db := testdb.New(t)
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &Config{AppMode: "prod", Admin: AdminConfig{Username: "admin", Password: "strong-password"}}

	require.NoError(t, NewSeeder(db, cfg, log).Run())

	var customers int64
	require.NoError(t, db.Model(&models.Customer{}).Count(&customers).Error)
	assert.Zero(t, customers)
}
