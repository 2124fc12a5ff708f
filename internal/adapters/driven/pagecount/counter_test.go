package pagecount

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCounter_CountPages_MissingFile tests probing a nonexistent path
func TestCounter_CountPages_MissingFile(t *testing.T) {
	_, err := NewCounter().CountPages(filepath.Join(t.TempDir(), "absent.pdf"))
	assert.Error(t, err)
}

// TestCounter_CountPages_NotAPDF tests probing a file that is not a PDF
func TestCounter_CountPages_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o644))

	_, err := NewCounter().CountPages(path)
	assert.Error(t, err)
}

// TestCounter_CountPages_TruncatedPDF tests a file with a PDF header but
// no document structure
func TestCounter_CountPages_TruncatedPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o644))

	_, err := NewCounter().CountPages(path)
	assert.Error(t, err)
}
