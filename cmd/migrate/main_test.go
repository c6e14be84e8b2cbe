//go:build unit

package main

import (
	"os"
	"path/filepath"
	"testing"

	"ariga.io/atlas/sql/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyChecksum_MigrationsMatchSumFile(t *testing.T) {
	require.NoError(t, verifyChecksum("file://../../migrations"))
}

func TestVerifyChecksum_DetectsEditedMigration(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"001_initial_schema.sql", "002_payment_attempts_idempotency.sql", "atlas.sum"} {
		b, err := os.ReadFile(filepath.Join("../../migrations", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0o644))
	}
	f, err := os.OpenFile(filepath.Join(dir, "002_payment_attempts_idempotency.sql"), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("\nDROP TABLE idempotency_keys;\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.ErrorIs(t, verifyChecksum("file://"+dir), migrate.ErrChecksumMismatch)
}

func TestVerifyChecksum_MissingSumFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_initial_schema.sql"), []byte("CREATE TABLE t (id int);\n"), 0o644))

	assert.ErrorIs(t, verifyChecksum("file://"+dir), migrate.ErrChecksumNotFound)
}

func TestVerifyChecksum_SkipsRemoteDirs(t *testing.T) {
	assert.NoError(t, verifyChecksum("atlas://tourbook"))
}
