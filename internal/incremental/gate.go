package incremental

import (
	stdErrors "errors"
	"io/fs"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
)

// Gate compares a fingerprint with the persisted baseline.
type Gate struct {
	NavIndexFile string
	DocIndexFile string
	TagFile      string
}

// NewGate locates the persisted artifacts of cfg.
func NewGate(cfg *config.Config) Gate {
	return Gate{
		NavIndexFile: cfg.Output.NavIndexFile,
		DocIndexFile: cfg.Output.DocIndexFile(),
		TagFile:      cfg.Output.TagFile,
	}
}

// ShouldSkip reports whether the navigation index and document index exist
// and the persisted fingerprint equals fp. It never writes.
func (g Gate) ShouldSkip(fp Fingerprint) (bool, error) {
	for _, p := range []string{g.NavIndexFile, g.DocIndexFile} {
		exists, err := fileExists(p)
		if err != nil {
			return false, err
		}
		if !exists {
			slog.Debug("Build output missing; rebuild required", "path", p)
			return false, nil
		}
	}

	persisted, err := os.ReadFile(g.TagFile)
	if err != nil {
		if stdErrors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errors.WrapError(err, errors.CategoryFileSystem, "read fingerprint file").Fatal().Build()
	}
	return string(persisted) == fp.String(), nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case stdErrors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, errors.WrapError(err, errors.CategoryFileSystem, "stat build output").Fatal().WithContext("path", path).Build()
	}
}
