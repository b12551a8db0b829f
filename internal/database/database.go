// Package database owns the SQLite connection, schema migration and the
// one-time bootstrap of the default administrator account. Resource
// repositories live in subpackages and receive the *gorm.DB explicitly.
package database

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/titangym/gymdesk/internal/entities"
)

// Default administrator created when the admins table is empty.
const (
	DefaultAdminUsername = "titan_admin"
	DefaultAdminPassword = "Titan2025!"
	DefaultAdminFullName = "Администратор ТИТАН"
)

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens (or creates) the database file, runs migrations and
// seeds the default admin. Foreign keys are enforced so that deleting a
// client cascades to its visits, ledger rows and scheduled sessions.
func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Admin{},
		&entities.Trainer{},
		&entities.Client{},
		&entities.MembershipType{},
		&entities.ClientMembership{},
		&entities.TrainingSchedule{},
		&entities.TrainingHistory{},
		&entities.Visit{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedDefaultAdmin(); err != nil {
		return nil, fmt.Errorf("failed to seed default admin: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// seedDefaultAdmin creates the bootstrap administrator when no admin
// accounts exist yet.
func (d *Database) seedDefaultAdmin() error {
	var count int64
	if err := d.DB.Model(&entities.Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &entities.Admin{
		Username:     DefaultAdminUsername,
		PasswordHash: string(hash),
		FullName:     DefaultAdminFullName,
		CreatedAt:    time.Now(),
	}
	if err := d.DB.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("Created default admin account %q (change the password after first login)", DefaultAdminUsername)
	return nil
}
