package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		dryRun = false
		bcryptCost = bcrypt.DefaultCost
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestHashPassword(t *testing.T) {
	out, err := execute(t, "hash-password", "s3cret-pass", "--cost", "4")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pass")))
}

func TestImportDryRun(t *testing.T) {
	sheet := strings.Join([]string{
		"title,slug,category,description,base_price,variant_with_blouse_price,variant_with_blouse_stock,variant_without_blouse_price,variant_without_blouse_stock",
		"Mysore Silk,,Silk,Soft crepe silk,6200.00,6200.00,3,5850.00,1",
		"Broken Row,,Silk,,not-a-price,1,1,1,1",
	}, "\n")
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(sheet), 0o600))

	out, err := execute(t, "import", path, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "line 3:")
	assert.Contains(t, out, "1 rows parsed, 1 rejected")
	assert.NotContains(t, out, "created")
}

func TestImportRejectsUnknownExtension(t *testing.T) {
	_, err := execute(t, "import", "catalog.txt", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
