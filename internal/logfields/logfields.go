package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath        = "path"
	KeyFile        = "file"
	KeySource      = "source"
	KeyDestination = "destination"
	KeyLine        = "line"
	KeyKind        = "kind"
	KeyCount       = "count"
	KeyBackup      = "backup"
	KeyDurationMS  = "duration_ms"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Destination(d string) slog.Attr  { return slog.String(KeyDestination, d) }
func Line(n int) slog.Attr            { return slog.Int(KeyLine, n) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Backup(b string) slog.Attr       { return slog.String(KeyBackup, b) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
