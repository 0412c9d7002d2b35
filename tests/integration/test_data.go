package integration

import (
	"fmt"
	"time"
)

// TestUser generates unique test user credentials using a timestamp
func TestUser(suffix string) (username, email, password string) {
	ts := time.Now().UnixNano()
	username = fmt.Sprintf("tester-%d-%s", ts, suffix)
	email = fmt.Sprintf("test-%d-%s@example.com", ts, suffix)
	password = "TestPassword123"
	return
}

// TestSKU generates a unique product SKU
func TestSKU(suffix string) string {
	return fmt.Sprintf("SKU-%d-%s", time.Now().UnixNano(), suffix)
}
