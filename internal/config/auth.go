package config

import (
	"fmt"
	"time"
)

// DefaultAuthTTLHours is the access token lifetime when none is configured.
const DefaultAuthTTLHours = 24

// minSecretLength is the shortest HMAC secret accepted.
const minSecretLength = 16

// AuthConfig holds the shared secret used to sign and verify backend access tokens.
type AuthConfig struct {
	Secret   string
	TTLHours int
}

// NewAuthConfig validates a secret and token lifetime. A zero ttlHours uses
// DefaultAuthTTLHours.
func NewAuthConfig(secret string, ttlHours int) (*AuthConfig, error) {
	if ttlHours == 0 {
		ttlHours = DefaultAuthTTLHours
	}
	cfg := &AuthConfig{Secret: secret, TTLHours: ttlHours}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Auth returns the auth settings, or false when no secret is configured.
func (c *Config) Auth() (*AuthConfig, bool, error) {
	if c.AuthSecret == "" {
		return nil, false, nil
	}
	auth, err := NewAuthConfig(c.AuthSecret, c.AuthTTLHours)
	if err != nil {
		return nil, false, err
	}
	return auth, true, nil
}

// TTL returns the token lifetime as a duration.
func (c *AuthConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

func (c *AuthConfig) normalize() error {
	if len(c.Secret) < minSecretLength {
		return fmt.Errorf("%s must be at least %d characters", EnvAuthSecret, minSecretLength)
	}
	if c.TTLHours < 1 {
		return fmt.Errorf("%s must be at least 1 hour, got: %d", EnvAuthTTL, c.TTLHours)
	}
	return nil
}
