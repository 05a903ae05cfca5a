package state

import (
	"encoding/json"
	"os"
	"path/filepath"

	cerrors "carwatcher/pkg/errors"
)

// stateFile is the on-disk JSON shape
type stateFile struct {
	CarIDs []string `json:"car_ids"`
}

// FileStore implements Store on a JSON flat file
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the seen-set from disk
func (f *FileStore) Load() (SeenSet, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSeenSet(), nil
		}
		return NewSeenSet(), cerrors.NewState("could not read state file", err)
	}

	var contents stateFile
	if err := json.Unmarshal(data, &contents); err != nil {
		return NewSeenSet(), cerrors.NewState("could not parse state file", err)
	}

	return NewSeenSet(contents.CarIDs...), nil
}

// Save writes the seen-set to a temp file in the target directory and
// renames it over the old one. A crash mid-write leaves the previous
// state intact.
func (f *FileStore) Save(set SeenSet) error {
	data, err := json.MarshalIndent(stateFile{CarIDs: set.IDs()}, "", "  ")
	if err != nil {
		return cerrors.NewState("could not encode state file", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".seen_cars-*.tmp")
	if err != nil {
		return cerrors.NewState("could not create temp state file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return cerrors.NewState("could not write state file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return cerrors.NewState("could not close state file", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return cerrors.NewState("could not replace state file", err)
	}

	return nil
}
