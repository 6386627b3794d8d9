// Command manage-users administers the users table directly: listing
// accounts, creating new ones and deleting an account together with its file
// rows and blobs. Registration has no HTTP endpoint, so this is the only way
// accounts are created besides the boot seed.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"znappystore/models"
)

func usage() {
	fmt.Println("usage: manage-users list")
	fmt.Println("       manage-users create <email> <password> <name>")
	fmt.Println("       manage-users delete <email>")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	_ = godotenv.Load()
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	switch os.Args[1] {
	case "list":
		listUsers(db)
	case "create":
		if len(os.Args) < 5 {
			usage()
		}
		createUser(db, os.Args[2], os.Args[3], os.Args[4])
	case "delete":
		if len(os.Args) < 3 {
			usage()
		}
		deleteUser(db, os.Args[2])
	default:
		usage()
	}
}

func listUsers(db *gorm.DB) {
	var users []models.User
	if err := db.Order("created_at desc").Find(&users).Error; err != nil {
		log.Fatalf("failed to list users: %v", err)
	}
	if len(users) == 0 {
		fmt.Println("no users found")
		return
	}
	for _, u := range users {
		fmt.Printf("%s - %s (id=%d)\n", u.Email, u.Name, u.ID)
	}
	fmt.Printf("total users: %d\n", len(users))
}

func createUser(db *gorm.DB, email, password, name string) {
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		fmt.Printf("user %s already exists (id=%d)\n", email, existing.ID)
		os.Exit(1)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}
	user := models.User{Email: email, Name: name, HashedPassword: hashed}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s (id=%d)\n", user.Email, user.ID)
}

func deleteUser(db *gorm.DB, email string) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("user %s not found\n", email)
			os.Exit(1)
		}
		log.Fatalf("failed to look up user: %v", err)
	}

	// Collect blob paths before the cascade wipes the file rows.
	var files []models.File
	if err := db.Where("user_id = ?", user.ID).Find(&files).Error; err != nil {
		log.Fatalf("failed to list user files: %v", err)
	}

	if err := db.Delete(&user).Error; err != nil {
		log.Fatalf("failed to delete user: %v", err)
	}

	removed := 0
	for _, f := range files {
		if err := os.Remove(f.FilePath); err != nil {
			if !os.IsNotExist(err) {
				log.Printf("warning: removing blob %s failed: %v", f.FilePath, err)
			}
			continue
		}
		removed++
	}
	fmt.Printf("deleted user %s and %d file(s), removed %d blob(s)\n", user.Email, len(files), removed)
}
