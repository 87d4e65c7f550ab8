package admin

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playmatatu/poolsim/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAccountNotFound = errors.New("admin account not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrIPNotAllowed    = errors.New("ip not allowed")
)

// GetAdminAccount retrieves an admin account by name
func GetAdminAccount(db *sqlx.DB, name string) (*models.AdminAccount, error) {
	var admin models.AdminAccount
	err := db.Get(&admin, `SELECT name, display_name, token_hash, roles, allowed_ips, created_at, updated_at FROM admin_accounts WHERE name=$1`, name)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// HashToken bcrypt hashes an admin token.
func HashToken(plainToken string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hashed), nil
}

// VerifyAdminToken checks if the provided token matches the stored hash
func VerifyAdminToken(hashedToken, plainToken string) bool {
	if hashedToken == "" || plainToken == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(plainToken))
	return err == nil
}

// IPAllowed reports whether ip may use an account. An empty list allows any
// address; entries may be single IPs or CIDR ranges.
func IPAllowed(allowed []string, ip string) bool {
	if len(allowed) == 0 {
		return true
	}
	parsed := net.ParseIP(ip)
	for _, a := range allowed {
		if a == ip {
			return true
		}
		if _, cidr, err := net.ParseCIDR(a); err == nil && parsed != nil && cidr.Contains(parsed) {
			return true
		}
	}
	return false
}

// CreateAdminAccount creates or replaces an admin account (used for seeding)
func CreateAdminAccount(db *sqlx.DB, name, displayName, plainToken string, roles, allowedIPs []string) error {
	hashedToken, err := HashToken(plainToken)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO admin_accounts (name, display_name, token_hash, roles, allowed_ips, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			token_hash = EXCLUDED.token_hash,
			roles = EXCLUDED.roles,
			allowed_ips = EXCLUDED.allowed_ips,
			updated_at = NOW()
	`, name, displayName, hashedToken, pq.Array(roles), pq.Array(allowedIPs))

	return err
}

// LogAdminAction records an admin action in the audit log
func LogAdminAction(db *sqlx.DB, adminName, ip, route, action string, details map[string]interface{}, success bool) error {
	if db == nil {
		log.Printf("[ADMIN] %s %s %s from %s success=%v", adminName, action, route, ip, success)
		return nil
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		log.Printf("Failed to marshal admin audit details: %v", err)
		detailsJSON = []byte("{}")
	}

	_, err = db.Exec(`
		INSERT INTO admin_audit (admin_name, ip, route, action, details, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, adminName, ip, route, action, detailsJSON, success)

	if err != nil {
		log.Printf("Failed to log admin action: %v", err)
	}

	return err
}

// GetAdminAuditLogs retrieves recent admin audit logs with pagination
func GetAdminAuditLogs(db *sqlx.DB, limit, offset int) ([]models.AdminAudit, error) {
	logs := []models.AdminAudit{}
	query := `
		SELECT id, admin_name, ip, route, action, details, success, created_at
		FROM admin_audit
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	err := db.Select(&logs, query, limit, offset)
	return logs, err
}

// ValidateAdminToken validates a name + token combination from the given address
func ValidateAdminToken(db *sqlx.DB, name, token, ip string) (*models.AdminAccount, error) {
	admin, err := GetAdminAccount(db, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[ADMIN] No admin account found for: %s", name)
			return nil, ErrAccountNotFound
		}
		log.Printf("[ADMIN] Database error: %v", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !VerifyAdminToken(admin.TokenHash, token) {
		log.Printf("[ADMIN] Token verification failed for: %s", name)
		return nil, ErrInvalidToken
	}
	if !IPAllowed(admin.AllowedIPs, ip) {
		log.Printf("[ADMIN] %s not allowed from %s", name, ip)
		return nil, ErrIPNotAllowed
	}

	return admin, nil
}
