// Command seed bootstraps the first admin account so the API can be used
// right after migrations.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rowad-platform/merit-api/pkg/config"
	"github.com/rowad-platform/merit-api/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	name := envOr("SEED_ADMIN_NAME", "admin")
	email := envOr("SEED_ADMIN_EMAIL", "admin@school.local")
	password := envOr("SEED_ADMIN_PASSWORD", "admin123")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var exists int
	err = db.GetContext(ctx, &exists, "SELECT 1 FROM users WHERE email = $1 LIMIT 1", email)
	if err == nil {
		fmt.Printf("admin %s already present, nothing to do\n", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	_, err = db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, role, password_hash, created_at) VALUES ($1, $2, $3, 'admin', $4, $5)",
		uuid.NewString(), name, email, string(hash), time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("admin %s created\n", email)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
