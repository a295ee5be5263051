// Package manifest persists the build artifacts that describe the generated
// tree: the navigation index, the document index and the fingerprint tag.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/emit"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/apidocbuilder/internal/incremental"
	"git.home.luguber.info/inful/apidocbuilder/internal/navindex"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// DocIndex lists every emitted page, products in build order. Fingerprints
// maps each path to the content fingerprint of its page.
type DocIndex struct {
	Files        []string          `json:"files"`
	Fingerprints map[string]string `json:"fingerprints"`
}

// NewDocIndex builds the document index from emitted documents.
func NewDocIndex(docs []emit.Document) DocIndex {
	idx := DocIndex{Files: make([]string, 0, len(docs)), Fingerprints: make(map[string]string, len(docs))}
	for _, d := range docs {
		idx.Files = append(idx.Files, d.Path)
		idx.Fingerprints[d.Path] = d.Fingerprint
	}
	return idx
}

// WriteNavIndex writes the navigation index as JSON.
func WriteNavIndex(path string, idx navindex.NavigationIndex) error {
	return writeJSON(path, idx)
}

// WriteDocIndex writes the document index as JSON.
func WriteDocIndex(path string, idx DocIndex) error {
	return writeJSON(path, idx)
}

// WriteTag writes the fingerprint tag file. It must be the last artifact a
// build writes: its presence asserts that everything else is complete.
func WriteTag(path string, fp incremental.Fingerprint) error {
	return writeAtomic(path, []byte(fp.String()))
}

// RemoveTag deletes the fingerprint tag file so no later run can skip over
// output that is being rewritten. A missing file is not an error.
func RemoveTag(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fsError(err, "remove fingerprint tag", path)
	}
	return nil
}

// ReadNavIndex loads a navigation index written by WriteNavIndex.
func ReadNavIndex(path string) (navindex.NavigationIndex, error) {
	var idx navindex.NavigationIndex
	if err := readJSON(path, &idx); err != nil {
		return nil, err
	}
	return idx, nil
}

// ReadDocIndex loads a document index written by WriteDocIndex.
func ReadDocIndex(path string) (DocIndex, error) {
	var idx DocIndex
	err := readJSON(path, &idx)
	return idx, err
}

// Products lists the products present in a navigation index in build order.
func Products(idx navindex.NavigationIndex) []definition.Product {
	var out []definition.Product
	for _, p := range definition.Products() {
		if _, ok := idx[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode artifact").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return writeAtomic(path, append(data, '\n'))
}

// writeAtomic writes through a temporary file and a rename so readers never
// see a partial artifact.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fsError(err, "create artifact directory", path)
	}
	tmp := path + ".tmp"
	// #nosec G306 -- published build artifacts.
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return fsError(err, "write temp artifact", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fsError(err, "atomic rename artifact", path)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fsError(err, "read artifact", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, fmt.Sprintf("decode %s", filepath.Base(path))).
			Fatal().
			WithContext("path", path).
			Build()
	}
	return nil
}

func fsError(err error, msg, path string) error {
	return errors.WrapError(err, errors.CategoryFileSystem, msg).
		Fatal().
		WithContext("path", path).
		Build()
}
