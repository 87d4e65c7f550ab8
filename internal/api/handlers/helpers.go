package handlers

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
)

const maxProfileIDLen = 64

// normalizeProfileID lowercases and trims a profile id. Returns "" when the
// id is empty, too long or holds anything but letters, digits, '_' and '-'.
func normalizeProfileID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" || len(id) > maxProfileIDLen {
		return ""
	}
	for _, r := range id {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' && r != '-' {
			return ""
		}
	}
	return id
}

// generateID generates a random alphanumeric ID
func generateID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	result := make([]byte, length)
	for i := range result {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[n.Int64()]
	}
	return string(result)
}

// generateGuestID names a profile for callers that did not bring one.
func generateGuestID() string {
	return "guest_" + generateID(10)
}

// queryInt reads a positive int query value, falling back to def and capping
// at max.
func queryInt(raw string, def, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// bearerToken pulls a token from "Authorization: Bearer ..." or ?token=.
func bearerToken(header, query string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return query
}
