package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultAPIURL = "http://localhost:8080"
const tokenFileName = ".auditctl_token"

// APIURL returns the base URL for the audit service API.
// It can be overridden with the AUDIT_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("AUDIT_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// SaveToken stores the JWT token in the user's home directory for later commands.
func SaveToken(token string) error {
	return os.WriteFile(tokenPath(), []byte(token), 0600)
}

// ReadToken returns the locally stored JWT token.
func ReadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", fmt.Errorf("no stored token (run auditctl login first): %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// ClearToken removes the stored token.
func ClearToken() error {
	err := os.Remove(tokenPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func tokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return tokenFileName
	}
	return filepath.Join(home, tokenFileName)
}
