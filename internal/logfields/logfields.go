package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeySource     = "source"
	KeyPath       = "path"
	KeyField      = "field"
	KeyPlugin     = "plugin"
	KeyPluginType = "plugin_type"
	KeyFormat     = "format"
	KeyExportID   = "export_id"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Field(f string) slog.Attr        { return slog.String(KeyField, f) }
func Plugin(id string) slog.Attr      { return slog.String(KeyPlugin, id) }
func PluginType(t string) slog.Attr   { return slog.String(KeyPluginType, t) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func ExportID(id string) slog.Attr    { return slog.String(KeyExportID, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
