package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyProduct    = "product"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyKind       = "kind"
	KeyName       = "name"
	KeyCount      = "count"
	KeyFilter     = "filter"
	KeyOutcome    = "outcome"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Product(p string) slog.Attr       { return slog.String(KeyProduct, p) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Kind(k string) slog.Attr          { return slog.String(KeyKind, k) }
func Name(n string) slog.Attr          { return slog.String(KeyName, n) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Filter(f string) slog.Attr        { return slog.String(KeyFilter, f) }
func Outcome(o string) slog.Attr       { return slog.String(KeyOutcome, o) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
