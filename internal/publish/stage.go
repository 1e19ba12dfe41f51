// Package publish makes a finished export visible: locally by swapping a
// staged directory into place, remotely by uploading it to object storage.
package publish

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Stage calls write with a temporary directory created next to dir. When write
// succeeds the temporary directory replaces dir, otherwise it is removed and
// dir is left untouched.
func Stage(dir string, write func(tmp string) error) (err error) {
	dir = filepath.Clean(dir)
	parent, base := filepath.Dir(dir), filepath.Base(dir)

	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", dir, err)
	}

	tmp, err := os.MkdirTemp(parent, "."+base+"-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		if err != nil {
			os.RemoveAll(tmp)
		}
	}()

	if err := os.Chmod(tmp, 0o755); err != nil {
		return err
	}

	if err := write(tmp); err != nil {
		return err
	}

	return swap(tmp, dir)
}

// swap renames staged to dir, moving the previous dir aside first so that it
// can be restored if the rename fails.
func swap(staged, dir string) error {
	previous := staged + ".previous"

	err := os.Rename(dir, previous)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		previous = ""
	case err != nil:
		return fmt.Errorf("failed to move previous export aside: %w", err)
	}

	if err := os.Rename(staged, dir); err != nil {
		if previous != "" {
			if rerr := os.Rename(previous, dir); rerr != nil {
				slog.Error("failed to restore previous export", "dir", dir, "err", rerr)
			}
		}
		return fmt.Errorf("failed to move staged export into place: %w", err)
	}

	if previous != "" {
		if err := os.RemoveAll(previous); err != nil {
			slog.Warn("failed to remove previous export", "dir", previous, "err", err)
		}
	}

	slog.Debug("staged export swapped into place", "dir", dir)
	return nil
}
