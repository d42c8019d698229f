package generator

import (
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// WriteFile replaces path with content. The new content is written to a
// temporary file in the same directory and renamed into place, so readers
// never observe a partial file and a failure leaves the old one intact. The
// file is replaced even when it already holds content.
func WriteFile(path string, content []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(f.Name()))
		}
	}()

	if _, err = f.Write(content); err != nil {
		return multierr.Append(err, f.Close())
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(f.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
