package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seguido/seguido/internal/order"
)

// execCLI runs the root command against the given database path and returns
// combined stdout.
func execCLI(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--db", db))
	err := cmd.Execute()
	return out.String(), err
}

// listResponse is the JSON shape of "list --format json".
type listResponse struct {
	Status string        `json:"status"`
	Data   []order.Order `json:"data"`
}

func listOrders(t *testing.T, db string, args ...string) []order.Order {
	t.Helper()
	out, err := execCLI(t, db, append([]string{"list", "--format", "json"}, args...)...)
	require.NoError(t, err)

	var resp listResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func testDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "seguido.db")
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := execCLI(t, testDB(t), "list", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestAdd_And_List(t *testing.T) {
	db := testDB(t)

	out, err := execCLI(t, db, "add",
		"--title", "Auriculares",
		"--store", "Amazon",
		"--amount", "59.90",
		"--item", "Auriculares BT500",
		"--item", "Funda",
		"--ref", "PED-001",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved order")

	orders := listOrders(t, db)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "Auriculares", o.Title)
	assert.Equal(t, order.StatusOrdered, o.Status)
	assert.Equal(t, "EUR", o.Currency, "currency defaults from config")
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Auriculares BT500\nFunda", o.ProductName)
}

func TestAdd_ValidationFailure(t *testing.T) {
	out, err := execCLI(t, testDB(t), "add", "--store", "Amazon")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "title")
	assert.Contains(t, out, "amount")
}

func TestShipAndReceiveFlow(t *testing.T) {
	db := testDB(t)

	_, err := execCLI(t, db, "add",
		"--title", "Regalos", "--store", "El Corte Inglés", "--amount", "120",
		"--item", "Bufanda", "--item", "Guantes",
	)
	require.NoError(t, err)
	id := listOrders(t, db)[0].ID

	// Ship everything, recording the carrier.
	_, err = execCLI(t, db, "ship", "--id", id, "--all", "--tracking", "1Z999", "--carrier", "UPS")
	require.NoError(t, err)

	o := listOrders(t, db)[0]
	assert.Equal(t, order.StatusShipped, o.Status)
	assert.Equal(t, "1Z999", o.TrackingNumber)
	assert.Equal(t, "UPS", o.Carrier)

	// Receive just the first item.
	_, err = execCLI(t, db, "receive", "--id", id, "--items", "1")
	require.NoError(t, err)

	o = listOrders(t, db)[0]
	assert.Equal(t, order.StatusPartiallyReceived, o.Status)
	assert.Equal(t, order.StatusReceived, o.Items[0].Status)
	assert.Equal(t, order.StatusShipped, o.Items[1].Status)
	assert.NotEmpty(t, o.ReceivedDate, "first receipt stamps the date")

	// Receive the rest.
	_, err = execCLI(t, db, "receive", "--id", id, "--all")
	require.NoError(t, err)
	assert.Equal(t, order.StatusReceived, listOrders(t, db)[0].Status)
}

func TestShip_RejectsIneligibleItem(t *testing.T) {
	db := testDB(t)

	_, err := execCLI(t, db, "add", "--title", "Libro", "--store", "Casa del Libro",
		"--amount", "20", "--item", "Novela")
	require.NoError(t, err)
	id := listOrders(t, db)[0].ID

	_, err = execCLI(t, db, "ship", "--id", id, "--all")
	require.NoError(t, err)

	// Already shipped; shipping again must fail without changing anything.
	out, err := execCLI(t, db, "ship", "--id", id, "--items", "1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E_TRANSITION")
	assert.Equal(t, order.StatusShipped, listOrders(t, db)[0].Status)
}

func TestMark_UnknownOrder(t *testing.T) {
	out, err := execCLI(t, testDB(t), "ship", "--id", "nope", "--all")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E_NOT_FOUND")
}

func TestReturnAndClaim(t *testing.T) {
	db := testDB(t)

	_, err := execCLI(t, db, "add", "--title", "Teclado", "--store", "PcComponentes",
		"--amount", "120", "--item", "Teclado mecánico")
	require.NoError(t, err)
	id := listOrders(t, db)[0].ID

	_, err = execCLI(t, db, "claim", "--id", id)
	require.NoError(t, err)
	assert.Equal(t, order.StatusClaimed, listOrders(t, db)[0].Status)

	_, err = execCLI(t, db, "return", "--id", id)
	require.NoError(t, err)

	o := listOrders(t, db)[0]
	assert.Equal(t, order.StatusReceived, o.Status,
		"a fully returned order settles on the terminal received aggregate")
	assert.Equal(t, order.StatusReturned, o.Items[0].Status)
}

func TestClaim_ReportsStoredStatus(t *testing.T) {
	db := testDB(t)

	_, err := execCLI(t, db, "add", "--title", "Regalos", "--store", "El Corte Inglés",
		"--amount", "120", "--item", "Bufanda", "--item", "Guantes")
	require.NoError(t, err)
	id := listOrders(t, db)[0].ID

	_, err = execCLI(t, db, "ship", "--id", id, "--items", "1")
	require.NoError(t, err)

	// Item progress outranks the claim flag in the aggregate, so the claim
	// settles on the item-derived status. The command must report what was
	// persisted, not the pre-save value.
	out, err := execCLI(t, db, "claim", "--id", id, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   order.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, order.StatusPartiallyShipped, resp.Data.Status)
	assert.Equal(t, listOrders(t, db)[0].Status, resp.Data.Status,
		"claim output agrees with the stored collection")
}

func TestRemove(t *testing.T) {
	db := testDB(t)

	_, err := execCLI(t, db, "add", "--title", "Libro", "--store", "Amazon",
		"--amount", "10", "--item", "Novela")
	require.NoError(t, err)
	id := listOrders(t, db)[0].ID

	out, err := execCLI(t, db, "rm", "--id", id)
	require.Error(t, err, "deletion requires confirmation")
	assert.Contains(t, out, "--yes")
	require.Len(t, listOrders(t, db), 1)

	_, err = execCLI(t, db, "rm", "--id", id, "--yes")
	require.NoError(t, err)
	assert.Empty(t, listOrders(t, db))
}

func TestList_Views(t *testing.T) {
	db := testDB(t)

	_, err := execCLI(t, db, "add", "--title", "En camino", "--store", "Amazon",
		"--amount", "10", "--item", "A")
	require.NoError(t, err)
	_, err = execCLI(t, db, "add", "--title", "Entregado", "--store", "Amazon",
		"--amount", "20", "--item", "B")
	require.NoError(t, err)
	done := listOrders(t, db)[0].ID

	_, err = execCLI(t, db, "receive", "--id", done, "--all")
	require.NoError(t, err)

	active := listOrders(t, db, "--view", "active")
	require.Len(t, active, 1)
	assert.Equal(t, "En camino", active[0].Title)

	history := listOrders(t, db, "--view", "history")
	require.Len(t, history, 1)
	assert.Equal(t, "Entregado", history[0].Title)

	found := listOrders(t, db, "--search", "entregado")
	require.Len(t, found, 1)
	assert.Equal(t, "Entregado", found[0].Title)
}

func TestExport_NothingTerminal(t *testing.T) {
	db := testDB(t)

	_, err := execCLI(t, db, "add", "--title", "Libro", "--store", "Amazon",
		"--amount", "10", "--item", "Novela")
	require.NoError(t, err)

	out, err := execCLI(t, db, "export", "--out", filepath.Join(t.TempDir(), "out.csv"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E_EMPTY")
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	db := testDB(t)
	backupPath := filepath.Join(t.TempDir(), "backup.json")

	_, err := execCLI(t, db, "add", "--title", "Auriculares", "--store", "Amazon",
		"--amount", "59.90", "--item", "Auriculares BT500")
	require.NoError(t, err)
	id := listOrders(t, db)[0].ID

	_, err = execCLI(t, db, "backup", "--out", backupPath)
	require.NoError(t, err)

	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": 2`)

	_, err = execCLI(t, db, "rm", "--id", id, "--yes")
	require.NoError(t, err)
	require.Empty(t, listOrders(t, db))

	// Restore refuses to run unconfirmed.
	_, err = execCLI(t, db, "restore", "--in", backupPath)
	require.Error(t, err)

	out, err := execCLI(t, db, "restore", "--in", backupPath, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored 1 orders")

	restored := listOrders(t, db)
	require.Len(t, restored, 1)
	assert.Equal(t, id, restored[0].ID)
	assert.Equal(t, "Auriculares", restored[0].Title)
}

func TestStats_JSON(t *testing.T) {
	db := testDB(t)

	_, err := execCLI(t, db, "add", "--title", "Libro", "--store", "Amazon",
		"--amount", "10.50", "--item", "Novela")
	require.NoError(t, err)

	out, err := execCLI(t, db, "stats", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "10.50", resp.Data["all_time"])
	assert.Equal(t, "10.50", resp.Data["month"], "added today, so it counts this month")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "corto", truncate("corto", 10))

	got := truncate("Cafetera automática espresso", 10)
	assert.Equal(t, "Cafetera …", got)
	assert.True(t, utf8.ValidString(got))

	// The cut point lands on a multibyte rune.
	got = truncate("Ratón inalámbrico", 6)
	assert.Equal(t, "Ratón…", got)
	assert.True(t, utf8.ValidString(got))
}

func TestParseIndices(t *testing.T) {
	got, err := parseIndices("1, 3,2")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 1}, got)

	got, err = parseIndices("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseIndices("0")
	require.Error(t, err)
	_, err = parseIndices("dos")
	require.Error(t, err)
}
