// Seed creates the first admin user when no user with that username exists.
// Username and password come from SEED_ADMIN_USERNAME / SEED_ADMIN_PASSWORD,
// defaulting to admin / 1. Change the password immediately after first login.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"rentcar-backoffice/internal/config"
	"rentcar-backoffice/internal/db"
	"rentcar-backoffice/internal/security"
	userdomain "rentcar-backoffice/internal/user/domain"
	userrepo "rentcar-backoffice/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	username := envOr("SEED_ADMIN_USERNAME", "admin")
	password := envOr("SEED_ADMIN_PASSWORD", "1")
	email := envOr("SEED_ADMIN_EMAIL", "admin@rentcar.local")

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(database)

	exists, err := users.ExistsByUsername(ctx, username)
	if err != nil {
		log.Fatalf("check admin user: %v", err)
	}
	if exists {
		log.Printf("seed: user %q already exists, nothing to do", username)
		return
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(password))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	u := &userdomain.User{
		ID:           uuid.NewString(),
		FirstName:    "System",
		LastName:     "Administrator",
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         userdomain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		CreatedBy:    "system",
	}
	if err := u.Validate(); err != nil {
		log.Fatalf("validate admin user: %v", err)
	}
	if err := users.Create(ctx, u); err != nil {
		log.Fatalf("create admin user: %v", err)
	}
	log.Printf("seed: created admin user %q (%s)", username, u.ID)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
