package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func ArchiveLatestKey() string {
	return "archive:latest"
}

func ArchiveRunKey(runID uuid.UUID) string {
	return fmt.Sprintf("archive:run:%s", runID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
