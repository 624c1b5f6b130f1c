// cmd/hashpassword/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/pkg/auth"
)

// Prints a bcrypt hash for a staff password using the configured cost and
// password rules, for setting accounts by hand in the database.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run ./cmd/hashpassword <password>")
	}
	password := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	passwords := auth.NewPasswordManager(cfg)

	hash, err := passwords.HashPassword(password)
	if err != nil {
		log.Fatalf("Error generating hash: %v", err)
	}

	if err := passwords.VerifyPassword(password, hash); err != nil {
		log.Fatalf("Hash verification failed: %v", err)
	}

	fmt.Printf("Hash: %s\n", hash)
	fmt.Printf("Cost: %d\n", cfg.Security.BcryptCost)
}
