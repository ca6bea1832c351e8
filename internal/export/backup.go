package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/seguido/seguido/internal/order"
)

// Backup file format constants. Version 2 introduced per-item statuses.
const (
	backupVersion = 2
	backupSource  = "tracker_ai_app"
)

// Backup is the versioned envelope written to backup files.
type Backup struct {
	Version   int           `json:"version"`
	Timestamp string        `json:"timestamp"`
	Source    string        `json:"source"`
	Data      []order.Order `json:"data"`
}

// BackupFileName returns the download name for a backup taken now:
// tracker_backup_<YYYY-MM-DD>.json.
func BackupFileName(now time.Time) string {
	return fmt.Sprintf("tracker_backup_%s.json", now.Format("2006-01-02"))
}

// BackupFile serializes the collection inside the versioned envelope,
// indented for hand inspection.
func BackupFile(orders []order.Order, now time.Time) ([]byte, error) {
	b := Backup{
		Version:   backupVersion,
		Timestamp: now.UTC().Format(time.RFC3339),
		Source:    backupSource,
		Data:      orders,
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize backup: %w", err)
	}
	return data, nil
}
