package config

import "os"

// SecretSource represents where a secret comes from.
type SecretSource string

const (
	SourceEnv    SecretSource = "env"
	SourceConfig SecretSource = "config"
	SourceNone   SecretSource = "none"
)

// SecretStatus represents the status of a configured secret.
type SecretStatus struct {
	Name   string       `json:"name"`
	Source SecretSource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "hun...er2"
}

// CheckSecrets returns the status of every secret the application uses.
func CheckSecrets(cfg *Config) []SecretStatus {
	return []SecretStatus{
		checkSecret("Admin password", cfg.Admin.Password, EnvPrefix+"_ADMIN_PASSWORD"),
		checkSecret("Redis password", cfg.Store.Redis.Password, EnvPrefix+"_STORE_REDIS_PASSWORD"),
	}
}

// checkSecret checks if a secret is set and where it came from.
func checkSecret(name, value, envVar string) SecretStatus {
	status := SecretStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		if os.Getenv(envVar) != "" {
			status.Source = SourceEnv
		} else {
			status.Source = SourceConfig
		}
		status.Masked = mask(value)
	} else {
		status.Source = SourceNone
	}

	return status
}

// mask hides a secret for display, showing only the first 3 and last 3 chars.
func mask(secret string) string {
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:3] + "..." + secret[len(secret)-3:]
}
