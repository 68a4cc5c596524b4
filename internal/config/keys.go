package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv     APIKeySource = "env"
	KeySourceConfig  APIKeySource = "config"
	KeySourceDefault APIKeySource = "default"
	KeySourceNone    APIKeySource = "none"
)

// demoKey is the public placeholder both providers accept with tight quotas.
const demoKey = "demo"

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "abc...xyz"
}

// CheckAPIKeys returns the status of all provider API keys.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("Alpha Vantage API Key", cfg.Sources.AlphaVantage.APIKey,
			"ALPHA_VANTAGE_API_KEY", "WEALTHVISTA_SOURCES_ALPHA_VANTAGE_API_KEY"),
		checkKey("News API Key", cfg.Sources.News.APIKey,
			"NEWS_API_KEY", "WEALTHVISTA_SOURCES_NEWS_API_KEY"),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value string, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}

	switch {
	case value == "":
		status.Source = KeySourceNone
		return status
	case fromEnv(envVars):
		status.Source = KeySourceEnv
	case value == demoKey:
		status.Source = KeySourceDefault
	default:
		status.Source = KeySourceConfig
	}
	status.Masked = maskKey(value)
	return status
}

func fromEnv(envVars []string) bool {
	for _, e := range envVars {
		if os.Getenv(e) != "" {
			return true
		}
	}
	return false
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
