package shared

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// EnvFile is the dotenv file consulted for secrets.
const EnvFile = ".env"

// TokenEnvVar is the environment variable holding the ListenBrainz user token.
const TokenEnvVar = "LISTENBRAINZ_TOKEN"

// LoadEnv loads EnvFile into the process environment if it exists.
//
// Variables already set in the environment take precedence over the file.
// A world- or group-readable EnvFile triggers a warning since it holds the
// API token.
func LoadEnv(logger *log.Logger) {
	info, err := os.Stat(EnvFile)
	if err != nil {
		return
	}

	if info.Mode().Perm()&0044 != 0 && logger != nil {
		logger.Warn("env file is readable by other users", "file", EnvFile, "fix", "chmod 600 "+EnvFile)
	}

	if err := godotenv.Load(EnvFile); err != nil && logger != nil {
		logger.Warn("failed to load env file", "file", EnvFile, "error", err)
	}
}

// ResolveToken returns the ListenBrainz token from the environment, falling
// back to the configured value. The token itself is never logged.
func ResolveToken(config *Config) (string, error) {
	if token := os.Getenv(TokenEnvVar); token != "" {
		return token, nil
	}
	if config != nil && config.ListenBrainz.Token != "" {
		return config.ListenBrainz.Token, nil
	}
	return "", fmt.Errorf("%w: set %s or listenbrainz.token in config", ErrMissingCredentials, TokenEnvVar)
}
