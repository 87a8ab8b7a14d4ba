package internal

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubGooseUp(t *testing.T, fn func(ctx context.Context, db *sql.DB, dir string) error) {
	t.Helper()
	original := gooseUp
	gooseUp = fn
	t.Cleanup(func() { gooseUp = original })
}

func TestRunMigrations_AppliesEmbeddedDir(t *testing.T) {
	var gotDir string
	stubGooseUp(t, func(ctx context.Context, db *sql.DB, dir string) error {
		gotDir = dir
		return nil
	})

	require.NoError(t, RunMigrations(context.Background(), nil))
	assert.Equal(t, "migrations", gotDir)
}

func TestRunMigrations_PropagatesError(t *testing.T) {
	stubGooseUp(t, func(ctx context.Context, db *sql.DB, dir string) error {
		return errors.New("relation already exists")
	})

	err := RunMigrations(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation already exists")
}

func TestMigrations_AreGooseAnnotated(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		data, err := migrations.ReadFile(name)
		require.NoError(t, err)
		body := string(data)
		assert.True(t, strings.Contains(body, "-- +goose Up"), "%s lacks an Up section", name)
		assert.True(t, strings.Contains(body, "-- +goose Down"), "%s lacks a Down section", name)
	}
}

func TestMigrations_CreateFleetSchema(t *testing.T) {
	data, err := migrations.ReadFile("migrations/00001_create_fleet.sql")
	require.NoError(t, err)
	body := string(data)

	for _, want := range []string{
		"CREATE TABLE vehicles",
		"CREATE TABLE inspections",
		"plate_number",
		"latest_inspection_id",
		"ON DELETE SET NULL",
	} {
		assert.Contains(t, body, want)
	}
}
