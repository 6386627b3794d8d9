package main

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"znappystore/models"
)

func openDB(cfg Config) *gorm.DB {
	if cfg.DSN == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	return db
}

func autoMigrate(db *gorm.DB) {
	// Migrate models individually so a failure on one doesn't block others.
	// Users first so the files FK can be applied safely.
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Printf("migration warning (users): %v", err)
	}
	if err := db.AutoMigrate(&models.File{}); err != nil {
		log.Printf("migration warning (files): %v", err)
	}
}

// seedDB creates the demo accounts on an empty users table.
func seedDB(store UserStore) {
	count, err := store.CountUsers()
	if err != nil {
		log.Printf("seed: user count failed: %v", err)
		return
	}
	if count > 0 {
		return
	}

	demos := []struct {
		email    string
		password string
		name     string
	}{
		{"demo@znappystore.com", "demo123", "Demo User"},
		{"test@example.com", "test123", "Test User"},
		{"admin@znappystore.com", "admin123", "Admin User"},
		{"john@example.com", "john123", "John Smith"},
	}
	for _, d := range demos {
		hashed, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("seed: hashing password for %s failed: %v", d.email, err)
			continue
		}
		user := models.User{Email: d.email, Name: d.name, HashedPassword: hashed}
		if err := store.CreateUser(&user); err != nil {
			log.Printf("seed: creating %s failed: %v", d.email, err)
			continue
		}
		log.Printf("seeded demo user %s (id=%d)", user.Email, user.ID)
	}
}

// ensureUploadDir creates the blob root directory.
func ensureUploadDir(dir string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("failed to create upload dir %s: %v", dir, err)
	}
}
