package db

import (
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/ybenali/roadcall/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := ConnectSQLite(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return db
}

func TestDSN(t *testing.T) {
	dsn := DSN("root", "127.0.0.1", 3306, "roadcall")
	if dsn != "root@tcp(127.0.0.1:3306)/roadcall?parseTime=true" {
		t.Errorf("DSN = %q", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Error("DSN must enable parseTime for timestamp scanning")
	}
}

func TestAllModels(t *testing.T) {
	if got := len(AllModels()); got != 5 {
		t.Errorf("AllModels returned %d models, want 5", got)
	}
}

func TestAutoMigrateAndSeed(t *testing.T) {
	db := openTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	var contacts int64
	db.Model(&models.Contact{}).Count(&contacts)
	if contacts != 3 {
		t.Errorf("contacts = %d, want 3", contacts)
	}
	var users int64
	db.Model(&models.User{}).Count(&users)
	if users != 3 {
		t.Errorf("users = %d, want 3", users)
	}
	var admins int64
	db.Model(&models.Admin{}).Count(&admins)
	if admins != 2 {
		t.Errorf("admins = %d, want 2", admins)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	var contacts int64
	db.Model(&models.Contact{}).Count(&contacts)
	if contacts != 3 {
		t.Errorf("contacts after double seed = %d, want 3", contacts)
	}
}

func TestReset(t *testing.T) {
	db := openTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := db.Create(&models.Request{ID: 1, UserInfo: "x", Status: models.RequestSubmitted}).Error; err != nil {
		t.Fatalf("insert request: %v", err)
	}

	if err := Reset(db); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	var requests int64
	db.Model(&models.Request{}).Count(&requests)
	if requests != 0 {
		t.Errorf("requests after reset = %d, want 0", requests)
	}
	var contacts int64
	db.Model(&models.Contact{}).Count(&contacts)
	if contacts != 3 {
		t.Errorf("contacts after reset = %d, want 3 (reseeded)", contacts)
	}
}
