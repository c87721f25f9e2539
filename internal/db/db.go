package db

import (
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"comanda-backend/config"
	"comanda-backend/internal/auth"
	"comanda-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.Group{},
		&model.User{},
		&model.Table{},
		&model.Category{},
		&model.MenuItem{},
		&model.Order{},
		&model.OrderLine{},
		&model.Shift{},
		&model.PushSubscription{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// SeedGroups ensures the role groups exist.
func SeedGroups(db *gorm.DB) error {
	groups := []model.Group{
		{Name: auth.GroupWaitstaff},
		{Name: auth.GroupKitchen},
		{Name: auth.GroupManager},
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&groups).Error
}

// SeedAdmin creates the bootstrap superuser if it does not exist yet.
// Without it a fresh install has no account able to open a shift.
func SeedAdmin(db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("auth.admin_username and auth.admin_password must be configured")
	}

	var existing model.User
	err := db.First(&existing, "username = ?", username).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := model.User{
		Username:     username,
		PasswordHash: string(hash),
		Superuser:    true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	log.Printf("created bootstrap superuser %q", username)
	return nil
}
