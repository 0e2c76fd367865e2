package env

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Env holds the key/value pairs read from the .env file. It stays nil when
// configuration comes entirely from the process environment, as in tests
// and containers.
var Env map[string]string

// searched relative to the binary's working directory, so the app can be
// started from the repo root or from under cmd/streampilot
var envFiles = []string{
	".env",
	"../../.env",
	"../../../.env",
}

// SetupEnvFile loads the first .env file it can find and panics when none
// exists. Deployments that configure via the environment only should ship
// an empty .env.
func SetupEnvFile() {
	for _, file := range envFiles {
		if parsed, err := godotenv.Read(file); err == nil {
			Env = parsed
			return
		}
	}
	panic("No .env file found in any of the expected locations")
}

// GetEnv resolves a config value: .env file first, then the process
// environment, then the given default.
func GetEnv(key, def string) string {
	if val, ok := Env[key]; ok {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt is GetEnv for positive integer settings such as worker counts
// and queue sizes. Missing, malformed or non-positive values yield def.
func GetEnvInt(key string, def int) int {
	v, err := strconv.Atoi(GetEnv(key, ""))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
