package environ

import (
	"os"
	"strconv"
	"strings"
	"time"

	"k8s.io/kube-openapi/pkg/validation/strfmt"
)

// Prefix is tried before the bare key, so EPOCHSTAT_OUTPUT wins over OUTPUT.
const Prefix = "EPOCHSTAT_"

// lookup treats blank values as unset.
func lookup(key string) (string, bool) {
	for _, k := range []string{Prefix + key, key} {
		if value, ok := os.LookupEnv(k); ok {
			if value = strings.TrimSpace(value); value != "" {
				return value, true
			}
		}
	}
	return "", false
}

func GetString(key, fallback string) string {
	if value, ok := lookup(key); ok {
		return value
	}
	return fallback
}

// GetBool accepts anything strconv.ParseBool does. Unparsable values fall back.
func GetBool(key string, fallback bool) bool {
	value, ok := lookup(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

// GetDuration accepts day units ("1d") on top of the time.ParseDuration format.
func GetDuration(key string, fallback time.Duration) time.Duration {
	value, ok := lookup(key)
	if !ok {
		return fallback
	}
	d, err := strfmt.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
