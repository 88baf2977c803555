package misc

import (
	"io/fs"
	"os"

	"github.com/pkg/errors"
)

// IsFileExists reports whether path names an existing regular file.
// Stat failures other than "not exist" are returned so callers don't mistake
// an unreadable path for an absent one.
func IsFileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "Stat ["+path+"] failed")
	}
	if info.IsDir() {
		return false, errors.New("[" + path + "] is a directory")
	}
	return true, nil
}
