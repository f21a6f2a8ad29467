package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateSessionID creates a unique, time-ordered session ID.
// Format: sess-<timestamp>-<suffix>
// Example: sess-20260214T093041Z-4fa1b2c3
func GenerateSessionID(startedAt time.Time) string {
	// Use UTC timestamp in ISO format for consistent ordering
	ts := startedAt.UTC().Format("20060102T150405Z")

	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]

	return fmt.Sprintf("sess-%s-%s", ts, suffix)
}
