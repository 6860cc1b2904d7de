package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Env returns the trimmed value of key, or def when it is unset or blank.
func Env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func EnvInt(key string, def int) int {
	v, err := strconv.Atoi(Env(key, ""))
	if err != nil {
		return def
	}
	return v
}

func EnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(Env(key, ""))
	if err != nil {
		return def
	}
	return v
}

// EnvDuration accepts Go duration syntax, e.g. 90m or 2h.
func EnvDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(Env(key, ""))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
