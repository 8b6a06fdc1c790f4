// Command createadmin seeds or resets a back-office account.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/atlasbuild/buildsite/internal/auth"
	"github.com/atlasbuild/buildsite/internal/config"
	"github.com/atlasbuild/buildsite/internal/database"
	"github.com/atlasbuild/buildsite/internal/domain"
)

func main() {
	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password (or ADMIN_PASSWORD env)")
	reset := flag.Bool("reset", false, "reset the password if the user already exists")
	flag.Parse()

	_ = godotenv.Load()

	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}
	if *password == "" {
		fmt.Fprintln(os.Stderr, "a password is required: pass -password or set ADMIN_PASSWORD")
		os.Exit(1)
	}
	if len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "password must be at least 8 characters")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	db, err := database.Open(&cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	var existing domain.AdminUser
	err = db.Where("username = ?", *username).First(&existing).Error
	switch {
	case err == nil:
		if !*reset {
			fmt.Printf("admin user %q already exists; pass -reset to change the password\n", *username)
			return
		}
		updates := map[string]any{"hashed_password": hash, "is_active": true}
		if *email != "" {
			updates["email"] = *email
		}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			fmt.Fprintf(os.Stderr, "update admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("password reset for %q\n", *username)
	case errors.Is(err, gorm.ErrRecordNotFound):
		user := domain.AdminUser{
			Username:       *username,
			Email:          *email,
			HashedPassword: hash,
			IsActive:       true,
		}
		if err := db.Create(&user).Error; err != nil {
			fmt.Fprintf(os.Stderr, "create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("admin user %q created\n", *username)
	default:
		fmt.Fprintf(os.Stderr, "lookup admin user: %v\n", err)
		os.Exit(1)
	}
}
