package validator

import "os"

// Config holds the validator service configuration.
type Config struct {
	Port       string
	PrivateKey string
	ChainID    int64
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Port:       getEnv("VALIDATOR_PORT", "8082"),
		PrivateKey: getEnv("VALIDATOR_PRIVATE_KEY", ""),
		ChainID:    1337,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
