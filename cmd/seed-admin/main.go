package main

import (
	"log"
	"os"
	"strings"

	"github.com/playmatatu/poolsim/internal/admin"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/database"
)

func main() {
	// Initialize configuration (loads .env when present)
	cfg := config.Load()

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		adminToken = "change-me-in-production"
		log.Printf("WARNING: Using default admin token. Set ADMIN_TOKEN env var in production!")
	}

	// Without a database the server checks ADMIN_TOKEN_HASH instead of an account.
	if cfg.DatabaseURL == "" {
		hash, err := admin.HashToken(adminToken)
		if err != nil {
			log.Fatalf("Failed to hash token: %v", err)
		}
		log.Println("DATABASE_URL not set; add this to the server environment:")
		log.Printf("  ADMIN_TOKEN_HASH=%s", hash)
		return
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	name := strings.TrimSpace(os.Getenv("ADMIN_NAME"))
	if name == "" {
		name = "admin"
		log.Printf("Using default admin name: %s", name)
	}

	displayName := "Admin"
	roles := []string{"super_admin"}
	allowedIPs := cfg.AdminAllowedIPs // empty = allow from any IP

	if err := admin.CreateAdminAccount(db, name, displayName, adminToken, roles, allowedIPs); err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}

	log.Printf("✓ Admin account created/updated successfully")
	log.Printf("  Name: %s", name)
	log.Printf("  Roles: %v", roles)
	log.Printf("  Allowed IPs: %v", allowedIPs)
	log.Println("\nSend these headers to /api/v1/admin routes:")
	log.Printf("  X-Admin-Name: %s", name)
	log.Printf("  X-Admin-Token: <ADMIN_TOKEN>")
}
