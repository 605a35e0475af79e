package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateRunID generates a run ID with a timestamp prefix
func GenerateRunID() string {
	timestamp := time.Now().Format("20060102-150405")
	return fmt.Sprintf("run-%s-%s", timestamp, shortUUID())
}

// GenerateTrialID derives the ID of one trial of a run
func GenerateTrialID(runID string, restart, trial int) string {
	return fmt.Sprintf("%s/r%d/t%d", runID, restart, trial)
}

func shortUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
