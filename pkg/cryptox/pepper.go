package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
)

// Argon2id parameters (the RFC 9106 low-memory recommendation).
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	pepper     string
	pepperFile string
)

// SetPepperPath points the hasher at the pepper file. Call it before the
// first hash or verify; the pepper itself is loaded lazily on first use.
func SetPepperPath(file string) {
	pepperFile = file
	pepper = ""
}

// GetPepper returns the process-wide pepper, reading the configured file or
// minting one on a first run. Hashing without the pepper would silently
// weaken every stored credential, so failure to establish it is fatal.
func GetPepper() string {
	if pepper != "" {
		return pepper
	}

	loaded, err := loadPepper(filepath.Clean(pepperFile))
	if err != nil {
		slog.Error("cannot establish password pepper", slog.Any("err", err))
		os.Exit(1)
	}
	pepper = loaded

	return pepper
}

func loadPepper(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		return string(raw), nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	// First run against a fresh volume: mint a pepper and persist it so
	// hashes survive restarts.
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", err
	}
	fresh := make([]byte, keyLength)
	if _, err := rand.Read(fresh); err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(fresh)
	if err := os.WriteFile(path, []byte(encoded), 0600); err != nil {
		return "", err
	}
	return encoded, nil
}
