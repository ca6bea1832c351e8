package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seguido/seguido/internal/order"
)

var backupNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func TestBackupFileName(t *testing.T) {
	assert.Equal(t, "tracker_backup_2025-06-15.json", BackupFileName(backupNow))
}

func TestBackupFile_Envelope(t *testing.T) {
	orders := exportFixture()

	data, err := BackupFile(orders, backupNow)
	require.NoError(t, err)

	var b Backup
	require.NoError(t, json.Unmarshal(data, &b))
	assert.Equal(t, 2, b.Version)
	assert.Equal(t, "2025-06-15T10:30:00Z", b.Timestamp)
	assert.Equal(t, "tracker_ai_app", b.Source)
	assert.Equal(t, orders, b.Data)

	// Indented for hand inspection.
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"version\": 2,"))
}

func TestBackupFile_EmptyCollection(t *testing.T) {
	data, err := BackupFile([]order.Order{}, backupNow)
	require.NoError(t, err)

	var b Backup
	require.NoError(t, json.Unmarshal(data, &b))
	assert.Empty(t, b.Data)
	assert.NotNil(t, b.Data, "data is an empty array, not null")
}

func TestBackupFile_TimestampNormalizedToUTC(t *testing.T) {
	madrid := time.FixedZone("CEST", 2*60*60)
	local := time.Date(2025, 6, 15, 12, 30, 0, 0, madrid)

	data, err := BackupFile(nil, local)
	require.NoError(t, err)

	var b Backup
	require.NoError(t, json.Unmarshal(data, &b))
	assert.Equal(t, "2025-06-15T10:30:00Z", b.Timestamp)
}
