package migration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add Lab Results Table")
	require.NoError(t, err)
	assert.Contains(t, mf.UpPath, "add_lab_results_table.up.sql")
	assert.Contains(t, mf.DownPath, "add_lab_results_table.down.sql")

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Add Lab Results Table")

	_, err = os.Stat(mf.DownPath)
	assert.NoError(t, err)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "add_owner_index", sanitizeName("Add  Owner---Index"))
	assert.Equal(t, "v2_schema", sanitizeName("V2 Schema!"))
	assert.Equal(t, "migration", sanitizeName("!!!"))
}
