package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile encodes sc and writes it to path. The document is rendered in
// memory and moved into place with a rename, so a failed write never leaves
// a partial file at path.
func WriteFile(path string, sc *Scenario) error {
	var buf bytes.Buffer
	if err := Encode(&buf, sc); err != nil {
		return err
	}
	return WriteDocument(path, buf.Bytes())
}

// WriteDocument atomically writes an already encoded document to path.
func WriteDocument(path string, doc []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write scenario: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close scenario: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move scenario into place: %w", err)
	}

	return nil
}
