package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagesCmd_Use(t *testing.T) {
	assert.Equal(t, "images [paths...]", imagesCmd.Use)
}

func TestImagesCmd_NoRemoteLinks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.mmd")
	require.NoError(t, os.WriteFile(path, []byte("# Clean\n\nNo images.\n"), 0o644))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"images", path})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Localised 0 images")
}

func TestImagesCmd_MissingPath(t *testing.T) {
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"images", filepath.Join(t.TempDir(), "absent.mmd")})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
}
