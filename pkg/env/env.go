package env

import "os"

// Get reads an environment variable that lives outside the CETUS_-prefixed
// config struct (platform-provided values like PORT or LOG_FORMAT). An empty
// value counts as unset and yields the fallback.
func Get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
