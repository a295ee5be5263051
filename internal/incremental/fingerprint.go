// Package incremental decides whether a documentation build can be skipped.
//
// A Fingerprint is computed once per run from the pipeline binary, the
// upstream source tags of every product and the newest example input, then
// passed explicitly to the Gate and to persistence.
package incremental

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
)

// UpstreamTag is the tag contributed by the stage that prepared a product's sources.
type UpstreamTag struct {
	Product definition.Product
	Tag     string
}

// Fingerprint captures every input that can change the build output.
type Fingerprint struct {
	PipelineHash     string
	UpstreamTags     []UpstreamTag
	ExamplesMaxMTime int64
}

// String renders the fingerprint file content. Two fingerprints are equal
// exactly when their strings are byte-for-byte equal.
func (f Fingerprint) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "build step source hash: %s\ntags from dependencies:\n", f.PipelineHash)
	for _, t := range f.UpstreamTags {
		fmt.Fprintf(&b, "%s sources: %s\n", t.Product, t.Tag)
	}
	fmt.Fprintf(&b, "highest api-examples mtime: %d\n", f.ExamplesMaxMTime)
	return b.String()
}

// Digest is a short stable identifier of the fingerprint for reports and events.
func (f Fingerprint) Digest() string {
	sum := sha256.Sum256([]byte(f.String()))
	return hex.EncodeToString(sum[:])
}

// Computer assembles fingerprints from configuration.
type Computer struct {
	cfg *config.Config
	// PipelineHash returns the hash of the pipeline's own logic. Defaults to
	// hashing the running executable.
	PipelineHash func() (string, error)
	tagger       *Tagger
}

// NewComputer returns a Computer for cfg.
func NewComputer(cfg *config.Config) *Computer {
	return &Computer{cfg: cfg, PipelineHash: ExecutableHash, tagger: NewTagger(cfg.Extensions)}
}

// Compute builds the fingerprint for the current state of the inputs. Any
// failure is fatal: a fingerprint that cannot be trusted must not be compared.
func (c *Computer) Compute() (Fingerprint, error) {
	hash, err := c.PipelineHash()
	if err != nil {
		return Fingerprint{}, errors.WrapError(err, errors.CategoryConfig, "hash pipeline executable").Fatal().Build()
	}

	fp := Fingerprint{PipelineHash: hash}
	for _, p := range definition.Products() {
		pc, ok := c.cfg.Product(p)
		if !ok {
			continue
		}
		tag, tagErr := c.tagger.Tag(pc)
		if tagErr != nil {
			return Fingerprint{}, tagErr
		}
		fp.UpstreamTags = append(fp.UpstreamTags, UpstreamTag{Product: p, Tag: tag})
	}

	mtime, err := MaxMTime(c.cfg.ExamplesDir)
	if err != nil {
		return Fingerprint{}, err
	}
	fp.ExamplesMaxMTime = mtime
	return fp, nil
}

// MaxMTime returns the newest modification time (unix seconds) of any entry
// under dir, the directory itself included.
func MaxMTime(dir string) (int64, error) {
	var (
		maxMTime int64
		found    bool
	)
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if m := info.ModTime().Unix(); !found || m > maxMTime {
			maxMTime = m
			found = true
		}
		return nil
	})
	if err != nil {
		return 0, errors.WrapError(err, errors.CategoryConfig, "walk examples directory").
			Fatal().
			WithContext("dir", dir).
			Build()
	}
	if !found {
		return 0, errors.ConfigError("no entries found in examples directory").WithContext("dir", dir).Build()
	}
	return maxMTime, nil
}

// ExecutableHash hashes the running binary.
func ExecutableHash() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	return HashFile(exe)
}

// HashFile returns the hex sha256 of a file's content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
