package config

import (
	"context"
	"fmt"

	"loan-backend/internal/adapters/persistence/models"
	"loan-backend/internal/adapters/persistence/repositories"
	"loan-backend/internal/pkg/password"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
	log *logrus.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config, log *logrus.Logger) *Seeder {
	return &Seeder{db: db, cfg: cfg, log: log}
}

// Run executes all seeders. Demo customers are only added in dev mode.
func (s *Seeder) Run() error {
	s.log.Info("Running database seeders")

	if err := s.seedAdminUser(); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	if s.cfg.IsDev() {
		if err := s.seedDemoCustomers(); err != nil {
			return fmt.Errorf("seed demo customers: %w", err)
		}
	}

	s.log.Info("Database seeding completed")
	return nil
}

// seedAdminUser creates the configured operator account once
func (s *Seeder) seedAdminUser() error {
	ctx := context.Background()
	users := repositories.NewUserRepository(s.db)

	exists, err := users.ExistsByUsername(ctx, s.cfg.Admin.Username)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if s.cfg.IsProd() && s.cfg.Admin.Password == "admin" {
		s.log.Warn("Seeding admin with the default password, set ADMIN_PASSWORD")
	}

	hashed, err := password.Hash(s.cfg.Admin.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: s.cfg.Admin.Username,
		Password: hashed,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	s.log.WithField("username", admin.Username).Info("Admin user created")
	return nil
}

// seedDemoCustomers fills an empty customers table with a few accounts to try the API with
func (s *Seeder) seedDemoCustomers() error {
	var count int64
	if err := s.db.Model(&models.Customer{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	customers := []*models.Customer{
		{Name: "Fatih", Surname: "Terim", Email: "fatih.terim@example.com", CreditLimit: decimal.NewFromInt(10000), UsedCreditLimit: decimal.NewFromInt(2000)},
		{Name: "Ada", Surname: "Lovelace", Email: "ada@example.com", CreditLimit: decimal.NewFromInt(50000), UsedCreditLimit: decimal.Zero},
		{Name: "Alan", Surname: "Turing", CreditLimit: decimal.NewFromInt(1500), UsedCreditLimit: decimal.Zero},
	}
	if err := s.db.Create(&customers).Error; err != nil {
		return err
	}

	s.log.WithField("count", len(customers)).Info("Demo customers created")
	return nil
}
