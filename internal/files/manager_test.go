package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_WriteFileAtomic(t *testing.T) {
	base := t.TempDir()
	m := NewManager(base)

	path, err := m.WriteFileAtomic("exports/out.csv", func(w io.Writer) error {
		_, err := fmt.Fprint(w, "Date,Item\n")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "exports", "out.csv"), path)

	data, err := m.ReadFile("exports/out.csv")
	require.NoError(t, err)
	assert.Equal(t, "Date,Item\n", string(data))
	assert.True(t, m.FileExists("exports/out.csv"))
}

func TestManager_WriteFileAtomic_FailureLeavesNothing(t *testing.T) {
	base := t.TempDir()
	m := NewManager(base)

	_, err := m.WriteFileAtomic("out.csv", func(w io.Writer) error {
		fmt.Fprint(w, "partial")
		return errors.New("boom")
	})
	require.Error(t, err)

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestManager_ReadFileMissing(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.ReadFile("missing.csv")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
