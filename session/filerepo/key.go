package filerepo

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const keySize = 32

// GetOrCreateKey loads the base64 encoded secretbox key at path, generating
// and saving a new one with 0600 permissions when the file does not exist.
func GetOrCreateKey(path string) (*[keySize]byte, error) {
	key, err := loadKey(path)
	if err == nil {
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	key = new([keySize]byte)
	if _, err := rand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(key[:])
	if err := os.WriteFile(path, []byte(encoded), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write key: %w", err)
	}
	return key, nil
}

func loadKey(path string) (*[keySize]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("invalid key length: %d (expected %d)", len(raw), keySize)
	}
	key := new([keySize]byte)
	copy(key[:], raw)
	return key, nil
}
