package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestInitialize_JSON(t *testing.T) {
	var buf bytes.Buffer
	Initialize("debug", "json", &buf)
	defer Initialize("info", "text", nil)

	WithBatch("b-1", "order_payments").Info("Batch committed", "rows", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Batch committed", entry["msg"])
	assert.Equal(t, "b-1", entry["batch_id"])
	assert.Equal(t, "order_payments", entry["import"])
	assert.Equal(t, float64(3), entry["rows"])
}

func TestDatabaseCall_CompactsQuery(t *testing.T) {
	var buf bytes.Buffer
	Initialize("debug", "text", &buf)
	defer Initialize("info", "text", nil)

	DatabaseCall("rentals.list", "SELECT id\n\t\tFROM rentals\n\t\tWHERE customer_id = $1", "customer_id", 7)
	DatabaseResult("rentals.list", 0, errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, `query="SELECT id FROM rentals WHERE customer_id = $1"`)
	assert.Contains(t, out, "customer_id=7")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "error=boom")
}

func TestRowOutcome(t *testing.T) {
	var buf bytes.Buffer
	Initialize("info", "text", &buf)
	defer Initialize("info", "text", nil)

	RowOutcome(nil, 4, "imported", "rental 1")
	assert.Empty(t, buf.String())

	RowOutcome(nil, 5, "no_rental_found", "customer 9")
	assert.Contains(t, buf.String(), "outcome=no_rental_found")
	assert.Contains(t, buf.String(), "line=5")
}
