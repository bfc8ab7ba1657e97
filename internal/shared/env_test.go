package shared

import (
	"errors"
	"testing"
)

func TestResolveToken(t *testing.T) {
	t.Run("environment wins over config", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "env-token")

		config := DefaultConfig()
		config.ListenBrainz.Token = "config-token"

		token, err := ResolveToken(config)
		if err != nil {
			t.Fatalf("ResolveToken() error = %v", err)
		}
		if token != "env-token" {
			t.Errorf("token = %q, want env value", token)
		}
	})

	t.Run("falls back to config", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "")

		config := DefaultConfig()
		config.ListenBrainz.Token = "config-token"

		token, err := ResolveToken(config)
		if err != nil {
			t.Fatalf("ResolveToken() error = %v", err)
		}
		if token != "config-token" {
			t.Errorf("token = %q, want config value", token)
		}
	})

	t.Run("missing everywhere", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "")

		_, err := ResolveToken(DefaultConfig())
		if !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("error = %v, want %v", err, ErrMissingCredentials)
		}
	})

	t.Run("nil config", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "")

		if _, err := ResolveToken(nil); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("error = %v, want %v", err, ErrMissingCredentials)
		}
	})
}
