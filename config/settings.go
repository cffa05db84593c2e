package config

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// PhoneRegion is the default region used to parse contact phone numbers
// that carry no international prefix.
//
// Set via env:
// - PHONE_REGION=CN
func PhoneRegion() string {
	v := strings.ToUpper(strings.TrimSpace(os.Getenv("PHONE_REGION")))
	if v == "" {
		return "CN"
	}
	return v
}

// VentureLockTTL bounds how long one cascade may hold the per-venture lock.
//
// Set via env:
// - VENTURE_LOCK_TTL_SECONDS=30
func VentureLockTTL() time.Duration {
	return time.Duration(intFromEnv("VENTURE_LOCK_TTL_SECONDS", 30)) * time.Second
}

// OutboxDispatchEnabled turns on the Pub/Sub outbox dispatcher in the server.
//
// Set via env:
// - OUTBOX_DISPATCH=true
func OutboxDispatchEnabled() bool {
	return envBool("OUTBOX_DISPATCH")
}

// LogLevel reads LOG_LEVEL (panic|fatal|error|warn|info|debug|trace).
// Unknown or empty values fall back to error.
func LogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if err != nil {
		return logrus.ErrorLevel
	}
	return lvl
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
