package cache

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Marker holds the most recently seen version as plain text. It is
// overwritten on every run whether or not the version is new.
type Marker struct {
	path string
}

func NewMarker(path string) *Marker {
	return &Marker{path: path}
}

func (m Marker) Write(version string) error {
	if err := writeFile(m.path, []byte(version)); err != nil {
		return errors.Wrap(err, "Write latest marker ["+m.path+"] failed")
	}
	return nil
}

// Read returns the recorded version, or "" when nothing was recorded yet.
func (m Marker) Read() (string, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "Read latest marker ["+m.path+"] failed")
	}
	return string(data), nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "Create folder ["+dir+"] failed")
		}
	}
	return os.WriteFile(path, data, 0644)
}
