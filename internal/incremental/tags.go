package incremental

import (
	"crypto/sha256"
	"encoding/hex"
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/discovery"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
)

// Tagger derives the upstream tag of a product's sources.
//
// An explicit upstream tag file wins. Otherwise each root contributes its git
// HEAD (when it sits inside a repository) and a digest over the path, size and
// mtime of every discovered source file.
type Tagger struct {
	exts []string
}

// NewTagger returns a Tagger matching the configured source extensions.
func NewTagger(exts []string) *Tagger { return &Tagger{exts: exts} }

// Tag returns the tag for one product.
func (t *Tagger) Tag(p config.ProductConfig) (string, error) {
	if p.UpstreamTagFile != "" {
		data, err := os.ReadFile(p.UpstreamTagFile)
		if err != nil {
			return "", errors.WrapError(err, errors.CategoryConfig, "read upstream tag file").
				Fatal().
				WithContext("product", string(p.Name)).
				Build()
		}
		return strings.TrimSpace(string(data)), nil
	}

	h := sha256.New()
	for _, root := range p.Roots {
		head, err := gitHead(root.Path)
		if err != nil {
			return "", err
		}
		digest, err := t.treeDigest(root)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s\x00%s\x00%s\n", root.Path, head, digest)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (t *Tagger) treeDigest(root config.SourceRoot) (string, error) {
	files, err := discovery.FindSources(root.Path, t.exts, root.Prefixes)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	for _, f := range files {
		info, statErr := os.Stat(f)
		if statErr != nil {
			return "", errors.WrapError(statErr, errors.CategoryConfig, "stat source").Fatal().WithContext("file", f).Build()
		}
		rel, _ := filepath.Rel(root.Path, f)
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", filepath.ToSlash(rel), info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// gitHead returns the HEAD commit of the repository containing dir, or "" when
// dir is not inside a git working tree.
func gitHead(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if stdErrors.Is(err, git.ErrRepositoryNotExists) {
			return "", nil
		}
		return "", errors.WrapError(err, errors.CategoryConfig, "open source repository").Fatal().WithContext("root", dir).Build()
	}
	ref, err := repo.Head()
	if err != nil {
		// Freshly initialized repository without commits.
		return "", nil
	}
	return ref.Hash().String(), nil
}
