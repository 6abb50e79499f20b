package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ybenali/roadcall/internal/models"
	"github.com/ybenali/roadcall/internal/store"
)

// AllModels returns every GORM model for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Request{},
		&models.Contact{},
		&models.User{},
		&models.Admin{},
		&models.Assignment{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// Seed inserts the initial contacts, users and admins. Collections that
// already hold rows are left alone, so Seed is safe to run on every start.
func Seed(db *gorm.DB) error {
	now := time.Now()

	var contactCount int64
	if err := db.Model(&models.Contact{}).Count(&contactCount).Error; err != nil {
		return fmt.Errorf("db: seed contacts: %w", err)
	}
	if contactCount == 0 {
		contacts := store.SeedContacts(now)
		if err := db.Create(&contacts).Error; err != nil {
			return fmt.Errorf("db: seed contacts: %w", err)
		}
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("db: seed users: %w", err)
	}
	if userCount == 0 {
		users := store.SeedUsers(now)
		if err := db.Create(&users).Error; err != nil {
			return fmt.Errorf("db: seed users: %w", err)
		}
	}

	var adminCount int64
	if err := db.Model(&models.Admin{}).Count(&adminCount).Error; err != nil {
		return fmt.Errorf("db: seed admins: %w", err)
	}
	if adminCount == 0 {
		admins := store.SeedAdmins(now)
		if err := db.Create(&admins).Error; err != nil {
			return fmt.Errorf("db: seed admins: %w", err)
		}
	}

	return nil
}

// Reset drops all tables, recreates them and reseeds. Destructive;
// exposed only through the db reset CLI command.
func Reset(db *gorm.DB) error {
	if err := db.Migrator().DropTable(AllModels()...); err != nil {
		return fmt.Errorf("db: drop tables: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return err
	}
	return Seed(db)
}
