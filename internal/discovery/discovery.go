// Package discovery enumerates the source files of each product.
package discovery

import (
	stdErrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/apidocbuilder/internal/logfields"
	"git.home.luguber.info/inful/apidocbuilder/internal/util/sets"
)

// FindSources returns every file under root whose extension is in exts,
// sorted lexicographically. When prefixes is non-empty only files whose
// slash-separated path relative to root starts with one of the prefixes are
// returned. Hidden directories are not descended into.
func FindSources(root string, exts []string, prefixes []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if stdErrors.Is(err, fs.ErrNotExist) {
			return nil, rootError(root, ErrRootNotFound)
		}
		return nil, rootError(root, fmt.Errorf("%w: %w", ErrWalkFailed, err))
	}
	if !info.IsDir() {
		return nil, rootError(root, ErrRootNotDir)
	}

	accepted := sets.New[string]()
	for _, ext := range exts {
		accepted.Add(strings.TrimPrefix(ext, "."))
	}

	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if !accepted.Has(ext) {
			return nil
		}
		if len(prefixes) > 0 {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			if !hasAnyPrefix(filepath.ToSlash(rel), prefixes) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return nil, rootError(root, fmt.Errorf("%w: %w", ErrWalkFailed, walkErr))
	}

	sort.Strings(files)
	return files, nil
}

// ForProduct discovers the sources of every root of a product. Roots are
// scanned in configuration order and their results concatenated.
func ForProduct(p config.ProductConfig, exts []string) ([]string, error) {
	var out []string
	for _, root := range p.Roots {
		files, err := FindSources(root.Path, exts, root.Prefixes)
		if err != nil {
			return nil, err
		}
		slog.Debug("Discovered sources",
			logfields.Product(string(p.Name)),
			logfields.Path(root.Path),
			logfields.Count(len(files)))
		out = append(out, files...)
	}
	return out, nil
}

func hasAnyPrefix(rel string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(rel, strings.TrimPrefix(filepath.ToSlash(p), "./")) {
			return true
		}
	}
	return false
}

func rootError(root string, cause error) error {
	return errors.WrapError(cause, errors.CategoryConfig, "discover sources").
		Fatal().
		WithContext("root", root).
		Build()
}
