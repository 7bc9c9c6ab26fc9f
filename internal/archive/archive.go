// Package archive opens a Scratch .sb3 file, a ZIP archive, and extracts
// its project.json entry. Everything else in the archive (costumes, sounds)
// is ignored.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
)

const projectJSONName = "project.json"

// ExtractProjectJSON opens path as a ZIP archive and returns the raw bytes
// of its project.json entry.
func ExtractProjectJSON(path string) ([]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != projectJSONName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("archive: open %s: %w", projectJSONName, err)
		}
		defer rc.Close()

		b, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("archive: read %s: %w", projectJSONName, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("archive: %s: no %s entry", path, projectJSONName)
}
