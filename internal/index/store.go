package index

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrCorrupt marks a torn index state: the manifest's id list and the
// vector file no longer describe the same build. There is no recovery
// short of rebuilding.
var ErrCorrupt = errors.New("index artifacts are inconsistent")

// Manifest binds the vector file and the ordered row-id list together under
// one name. Position i of IDs refers to vector i; the two are only ever
// read or written as a unit.
type Manifest struct {
	Version    int     `json:"version"`
	Name       string  `json:"name"`
	Dimension  int     `json:"dimension"`
	Count      int     `json:"count"`
	VectorFile string  `json:"vector_file"`
	IDs        []int64 `json:"ids"`
	BuiltAt    int64   `json:"built_at"`
}

type vectorFile struct {
	Dim     int
	Vectors [][]float32
}

func manifestPath(dir, name string) string {
	return filepath.Join(dir, name+".manifest.json")
}

// Save persists the index and its id list under one name. The vector file
// is written under a fresh build-stamped name first, then the manifest is
// published atomically, so a reader never observes a half-updated pair.
func Save(dir, name string, f *Flat, ids []int64) error {
	if f.Len() != len(ids) {
		return fmt.Errorf("%w: %d vectors vs %d ids", ErrCorrupt, f.Len(), len(ids))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// Nanosecond stamp: rebuilds within the same second must still get a
	// fresh file, both for atomicity and for cache invalidation keyed on
	// the file name.
	now := time.Now()
	vecName := fmt.Sprintf("%s.%d.vec", name, now.UnixNano())
	vecPath := filepath.Join(dir, vecName)

	vf, err := os.Create(vecPath)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(vf).Encode(vectorFile{Dim: f.dim, Vectors: f.vectors}); err != nil {
		vf.Close()
		return err
	}
	if err := vf.Close(); err != nil {
		return err
	}

	manifest := Manifest{
		Version:    1,
		Name:       name,
		Dimension:  f.dim,
		Count:      f.Len(),
		VectorFile: vecName,
		IDs:        ids,
		BuiltAt:    now.Unix(),
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		return err
	}

	tmp := manifestPath(dir, name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, manifestPath(dir, name))
}

// Load reads the manifest and the vector file it points at, verifying that
// the pair still forms a consistent build.
func Load(dir, name string) (*Flat, []int64, error) {
	data, err := os.ReadFile(manifestPath(dir, name))
	if err != nil {
		return nil, nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	vf, err := os.Open(filepath.Join(dir, manifest.VectorFile))
	if err != nil {
		return nil, nil, err
	}
	defer vf.Close()

	var stored vectorFile
	if err := gob.NewDecoder(vf).Decode(&stored); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if len(stored.Vectors) != manifest.Count || len(manifest.IDs) != manifest.Count {
		return nil, nil, fmt.Errorf("%w: manifest count %d, ids %d, vectors %d",
			ErrCorrupt, manifest.Count, len(manifest.IDs), len(stored.Vectors))
	}

	f := &Flat{dim: stored.Dim, vectors: stored.Vectors}
	return f, manifest.IDs, nil
}

// LoadManifest reads just the manifest, without the vectors.
func LoadManifest(dir, name string) (*Manifest, error) {
	data, err := os.ReadFile(manifestPath(dir, name))
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &manifest, nil
}
