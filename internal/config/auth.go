package config

import (
	"sync"
)

var (
	jwtSecretMu sync.RWMutex
	// jwtSecretOverride takes precedence over configuration when set
	jwtSecretOverride []byte
)

// SetJWTSecret temporarily changes the JWT secret and returns a function to restore it
// This is primarily used for testing
func SetJWTSecret(secret []byte) func() {
	jwtSecretMu.Lock()
	previous := jwtSecretOverride
	jwtSecretOverride = secret
	jwtSecretMu.Unlock()

	return func() {
		jwtSecretMu.Lock()
		jwtSecretOverride = previous
		jwtSecretMu.Unlock()
	}
}

// GetJWTSecret returns the secret used to verify requester tokens. An empty secret means
// requester identity is disabled and every request is anonymous.
func GetJWTSecret() []byte {
	jwtSecretMu.RLock()
	defer jwtSecretMu.RUnlock()
	if jwtSecretOverride != nil {
		return jwtSecretOverride
	}
	return []byte(GetEnvOrDefault("auth.jwt_secret", ""))
}
