package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"github.com/pkg/errors"
)

// Versions maps every processed version to its size in megabytes. It is the
// only record of which versions have already been handled.
type Versions map[string]float64

func (v Versions) Contains(version string) bool {
	_, ok := v[version]
	return ok
}

// Insert records version in memory; call Store.Save to persist it.
func (v Versions) Insert(version string, sizeMB float64) {
	v[version] = sizeMB
}

// CorruptError means the cache file exists but is not a valid version map.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("cache file [%s] is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

func (e *CorruptError) Cause() error {
	return e.Err
}

// Store persists Versions as indented JSON at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s Store) Path() string {
	return s.path
}

// Load reads the cache file. An absent file yields an empty map; an invalid
// one yields a *CorruptError and is left untouched.
func (s Store) Load() (Versions, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Versions{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "Read cache ["+s.path+"] failed")
	}

	versions := Versions{}
	if err = json.Unmarshal(data, &versions); err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}
	if versions == nil {
		// literal "null"
		return nil, &CorruptError{Path: s.path, Err: errors.New("not a JSON object")}
	}
	return versions, nil
}

// Save overwrites the cache file with the whole map.
func (s Store) Save(versions Versions) error {
	if versions == nil {
		versions = Versions{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(versions); err != nil {
		return errors.Wrap(err, "Encode cache failed")
	}

	if err := writeFile(s.path, buf.Bytes()); err != nil {
		return errors.Wrap(err, "Save cache ["+s.path+"] failed")
	}
	return nil
}
