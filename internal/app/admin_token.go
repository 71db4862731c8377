package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const adminTokenFile = "admin.token"

// loadOrInitAdminToken returns the configured token when set. Otherwise it
// reads <data>/admin.token, creating it on first start. created reports
// whether a new file was written.
func loadOrInitAdminToken(dataDir, configured string) (token string, created bool, err error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured, false, nil
	}

	path := filepath.Join(dataDir, adminTokenFile)
	data, err := os.ReadFile(path)
	if err == nil {
		if token := strings.TrimSpace(string(data)); token != "" {
			return token, false, nil
		}
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("read admin token: %w", err)
	}

	token, err = generateAdminToken()
	if err != nil {
		return "", false, err
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return "", false, fmt.Errorf("write admin token: %w", err)
	}
	return token, true, nil
}

func generateAdminToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate admin token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
