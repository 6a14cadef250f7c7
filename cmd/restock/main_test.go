package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andresuchdata/restock-engine/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inventoryCSV = `SKU;Location;LPN;Available Qty;Status;Days To Expiry
A1;R-01-01-00;LP0;2;AVAILABLE;
A1;R-01-01-02;LP1;10;AVAILABLE;40
A1;R-01-02-03;LP2;5;AVAILABLE;10
B2;R-02-01-00;LP3;8;AVAILABLE;
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"restock"}, args...))
	return out.String(), err
}

func TestSalesCommandPrintsSummary(t *testing.T) {
	dir := t.TempDir()
	inv := writeFile(t, dir, "inventory.csv", inventoryCSV)
	sales := writeFile(t, dir, "sales.csv", "SKU,Confirmed Qty\nA1,4\nB2,3\nZ9,1\n")

	out, err := runCLI(t, "sales", "--inventory", inv, "--sales", sales, "--work-dir", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "3 evaluated, 1 need restock, 1 ok, 1 missing")
	assert.Contains(t, out, "R-01-02-03")
	assert.Contains(t, out, "missing products:")
	assert.Contains(t, out, "Z9")
}

func TestSalesCommandRuleOverride(t *testing.T) {
	dir := t.TempDir()
	inv := writeFile(t, dir, "inventory.csv", inventoryCSV)
	sales := writeFile(t, dir, "sales.csv", "SKU,Confirmed Qty\nA1,4\n")

	out, err := runCLI(t, "sales", "--inventory", inv, "--sales", sales, "--work-dir", dir, "--valid-statuses", "BLOCKED")
	require.NoError(t, err)
	assert.Contains(t, out, "1 evaluated, 0 need restock, 0 ok, 1 missing")
	assert.Contains(t, out, "0 usable, 4 unusable")
}

func TestLevelsCommandWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	inv := writeFile(t, dir, "inventory.csv", inventoryCSV)
	rules := writeFile(t, dir, "minmax.csv", "SKU,Location,LPN,Min,Max\nA1,R-01-01-00,LP0,4,9\n")
	target := filepath.Join(dir, "out", "levels.xlsx")

	_, err := runCLI(t, "levels", "--inventory", inv, "--min-max", rules, "--work-dir", dir, "--out", target)
	require.NoError(t, err)

	table, err := ingest.ReadTable(target)
	require.NoError(t, err)
	assert.Equal(t, "SKU", table.Header[0])
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "7", table.Rows[0][4])
	assert.Equal(t, "R-01-02-03", table.Rows[0][6])
	assert.Equal(t, "5", table.Rows[0][7])
	assert.Equal(t, "R-01-01-02", table.Rows[1][6])
	assert.Equal(t, "2", table.Rows[1][7])
	assert.Equal(t, "R-01-01-00", table.Rows[0][11])
}

func TestSalesCommandWritesCSVWithMissingSibling(t *testing.T) {
	dir := t.TempDir()
	inv := writeFile(t, dir, "inventory.csv", inventoryCSV)
	sales := writeFile(t, dir, "sales.csv", "SKU,Confirmed Qty\nA1,4\nZ9,1\n")
	target := filepath.Join(dir, "result.csv")

	_, err := runCLI(t, "sales", "--inventory", inv, "--sales", sales, "--work-dir", dir, "--out", target)
	require.NoError(t, err)

	primary, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(primary), "SKU,Description,Qty Sold"))

	missing, err := os.ReadFile(filepath.Join(dir, "result_missing.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(missing), "Z9")
}

func TestCrossCheckCommand(t *testing.T) {
	dir := t.TempDir()
	system := writeFile(t, dir, "system.csv", "SKU,Lot,Qty\nA1,L1,10\nB2,L1,4\n")
	warehouse := writeFile(t, dir, "warehouse.csv", "SKU,Lot,Qty\nA1,L1,7\nB2,L1,4\n")

	out, err := runCLI(t, "crosscheck", "--system", system, "--warehouse", warehouse, "--group-by-lot", "--work-dir", dir, "--top", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "2 rows, 1 with difference")
	assert.Contains(t, out, "... 1 more rows")
}

func TestShelfLifeCommand(t *testing.T) {
	dir := t.TempDir()
	inv := writeFile(t, dir, "inventory.csv", inventoryCSV)
	limits := writeFile(t, dir, "limits.csv", "SKU,Min Days\nA1,30\n")

	out, err := runCLI(t, "shelf-life", "--inventory", inv, "--limits", limits, "--work-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "4 checked, 1 non-compliant")
}

func TestMissingInputFails(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "sales", "--inventory", filepath.Join(dir, "nope.csv"), "--sales", filepath.Join(dir, "nope.csv"), "--work-dir", dir)
	assert.Error(t, err)
}

func TestRemoteInputWithoutBackendFails(t *testing.T) {
	dir := t.TempDir()
	sales := writeFile(t, dir, "sales.csv", "SKU,Confirmed Qty\nA1,4\n")
	_, err := runCLI(t, "sales", "--inventory", "s3://bucket/inventory.csv", "--sales", sales, "--work-dir", dir)
	assert.Error(t, err)
}

func TestSiblingName(t *testing.T) {
	assert.Equal(t, "out/result_cross_check.csv", siblingName("out/result.csv", "Cross Check"))
	assert.Equal(t, "s3://b/k/result_missing.csv", siblingName("s3://b/k/result.csv", "Missing"))
}
