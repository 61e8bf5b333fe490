package arc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/meigma/arc/internal/header"
)

// ValidatePack checks pack arguments before any archive is created: at
// least one input, every input an existing readable regular file whose
// name the header can represent, and an archive path that does not exist
// yet in an existing directory. Failures wrap ErrValidation.
func ValidatePack(inputs []string, archivePath string) error {
	if len(inputs) == 0 {
		return validationError("at least one input file is required")
	}
	for _, in := range inputs {
		if err := header.ValidateName(EntryName(in)); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
		if err := checkReadable(in); err != nil {
			return err
		}
	}

	if _, err := os.Lstat(archivePath); err == nil {
		return validationError("cannot create archive: %s already exists", archivePath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return validationError("cannot create archive %s: %w", archivePath, err)
	}
	dir := filepath.Dir(archivePath)
	info, err := os.Stat(dir)
	if err != nil {
		return validationError("cannot create archive %s: %w", archivePath, err)
	}
	if !info.IsDir() {
		return validationError("cannot create archive %s: %s is not a directory", archivePath, dir)
	}
	return nil
}

// ValidateUnpack checks that archivePath names an existing readable
// regular file. Failures wrap ErrValidation.
func ValidateUnpack(archivePath string) error {
	return checkReadable(archivePath)
}

// checkReadable reports whether path is a regular file that can be opened for reading.
func checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return validationError("file does not exist: no file named %s", path)
		}
		return validationError("cannot stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return validationError("%s is not a regular file", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return validationError("no read permission for %s: %w", path, err)
	}
	_ = f.Close()
	return nil
}
