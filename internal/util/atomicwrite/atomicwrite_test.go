package atomicwrite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "keys", "private.pem")

	require.NoError(t, WriteFile(p, []byte("uno"), 0o600))
	require.NoError(t, WriteFile(p, []byte("dos"), 0o600))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "dos", string(b))

	st, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no deben quedar temporales")
}
