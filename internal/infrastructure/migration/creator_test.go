package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/erp/inventory/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add row tag", "add_row_tag"},
		{"Add-Row-Tag", "add_row_tag"},
		{"ADD__ROW__TAG", "add_row_tag"},
		{"create locations 2", "create_locations_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")
	at := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	mf, err := createMigrationAt(dir, "Add reorder index", "Index items by supplier", at)
	require.NoError(t, err)

	assert.Equal(t, "20261019093000", mf.Version)
	assert.Equal(t, filepath.Join(dir, "20261019093000_add_reorder_index.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "20261019093000_add_reorder_index.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(up), "-- Migration: add_reorder_index\n-- Description: Index items by supplier"))

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")

	t.Run("refuses to overwrite", func(t *testing.T) {
		_, err := createMigrationAt(dir, "Add reorder index", "", at)
		assert.Error(t, err)
	})

	t.Run("rejects empty names", func(t *testing.T) {
		_, err := createMigrationAt(dir, "!!!", "", at)
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_items.up.sql":       {},
		"002_items.down.sql":     {},
		"001_init.up.sql":        {},
		"001_init.down.sql":      {},
		"README.md":              {},
		"nested/003_x.up.sql":    {},
		"embed.go":               {},
		"004_orphan.up.sql":      {},
		"005_only_down.down.sql": {},
	}

	got, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init", "002_items", "004_orphan"}, got)

	err = CheckPairs(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "004_orphan.down.sql")
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	got, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"20261019090000_create_locations",
		"20261019090100_create_suppliers",
		"20261019090200_create_inventory",
	}, got)
	assert.NoError(t, CheckPairs(migrations.FS))
}
