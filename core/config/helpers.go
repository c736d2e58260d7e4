package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys are looked up in viper, which resolves changed flags first and then
// the environment. Unchanged flag defaults fall through to fallback.
func getEnv(key, fallback string) string {
	if !viper.IsSet(key) {
		return fallback
	}
	if v := strings.TrimSpace(viper.GetString(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := getEnv(key, ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := getEnv(key, ""); v != "" {
		vLower := strings.ToLower(v)
		return vLower == "1" || vLower == "true" || vLower == "yes" || vLower == "on"
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := getEnv(key, ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
