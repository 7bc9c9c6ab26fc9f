package archive_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/scratchvm/internal/archive"
)

func writeSB3(t *testing.T, entries map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "project.sb3")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func TestExtractProjectJSON(t *testing.T) {
	path := writeSB3(t, map[string]string{
		"project.json": `{"targets":[]}`,
		"costume1.svg": `<svg/>`,
	})

	b, err := archive.ExtractProjectJSON(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"targets":[]}`, string(b))
}

func TestExtractProjectJSONMissing(t *testing.T) {
	path := writeSB3(t, map[string]string{
		"costume1.svg": `<svg/>`,
	})

	_, err := archive.ExtractProjectJSON(path)
	require.Error(t, err)
}

func TestExtractProjectJSONNotZip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.sb3")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := archive.ExtractProjectJSON(path)
	require.Error(t, err)
}
