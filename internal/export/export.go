// Package export writes a validated site configuration in the shape the host
// framework consumes, together with a manifest describing the export.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/siteconfig/internal/config"
	ferrors "git.home.luguber.info/inful/siteconfig/internal/foundation/errors"
	"git.home.luguber.info/inful/siteconfig/internal/logfields"
	"git.home.luguber.info/inful/siteconfig/internal/manifest"
	"git.home.luguber.info/inful/siteconfig/internal/plugin"
)

// Format selects the serialization of the exported configuration.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ManifestFile is the name of the export manifest written next to the configuration.
const ManifestFile = "export-manifest.json"

// ParseFormat normalizes a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", ferrors.ValidationError(fmt.Sprintf("unsupported export format %q (json or yaml)", s)).
			WithContext("format", s).
			Build()
	}
}

// FileName returns the configuration file name for the format.
func (f Format) FileName() string {
	return "site-config." + string(f)
}

// Options control an export.
type Options struct {
	Format   Format
	Source   string // where the configuration came from, recorded in the manifest
	Version  string
	Registry *plugin.Registry
}

// Encode serializes cfg. Plugin order is preserved and an empty plugin list is
// written as an empty list, never null.
func Encode(cfg *config.Config, format Format) ([]byte, error) {
	if cfg == nil {
		return nil, ferrors.InternalError("no configuration to encode").Build()
	}
	out := cfg.Clone()
	if out.Plugins == nil {
		out.Plugins = []plugin.Entry{}
	}
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryExport, "failed to encode configuration as JSON").Build()
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(out)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryExport, "failed to encode configuration as YAML").Build()
		}
		return data, nil
	default:
		return nil, ferrors.ValidationError(fmt.Sprintf("unsupported export format %q", format)).Build()
	}
}

// ConfigHash is the SHA-256 of the canonical JSON encoding, independent of the
// export format.
func ConfigHash(cfg *config.Config) (string, error) {
	data, err := Encode(cfg, FormatJSON)
	if err != nil {
		return "", err
	}
	return manifest.HashBytes(data), nil
}

// Write exports cfg into dir and returns the manifest that was written with it.
// Every file is replaced atomically; a reader never sees a partial file.
func Write(ctx context.Context, cfg *config.Config, dir string, opts Options) (*manifest.ExportManifest, error) {
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if opts.Registry == nil {
		opts.Registry = plugin.DefaultRegistry()
	}

	if err := config.ValidateWith(cfg, opts.Registry); err != nil {
		return nil, err
	}

	data, err := Encode(cfg, opts.Format)
	if err != nil {
		return nil, err
	}
	hash, err := ConfigHash(cfg)
	if err != nil {
		return nil, err
	}

	m := manifest.New(opts.Version, opts.Source)
	m.ConfigHash = hash
	m.Site = manifest.Site{
		Title:   cfg.SiteMetadata.Title,
		SiteURL: cfg.SiteMetadata.SiteURL,
		Social:  len(cfg.SiteMetadata.Social),
	}
	for _, p := range cfg.Plugins {
		m.Plugins = append(m.Plugins, manifest.PluginRef{
			Resolve: p.Resolve,
			Type:    opts.Registry.TypeOf(p.Resolve).String(),
		})
	}
	m.AddOutput(opts.Format.FileName(), data)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create export directory").
			WithContext("path", dir).
			Build()
	}

	if err := writeAtomic(ctx, filepath.Join(dir, opts.Format.FileName()), data); err != nil {
		return nil, err
	}

	manifestData, err := m.ToJSON()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryExport, "failed to encode export manifest").Build()
	}
	if err := writeAtomic(ctx, filepath.Join(dir, ManifestFile), manifestData); err != nil {
		return nil, err
	}

	slog.Info("Configuration exported",
		logfields.Path(dir),
		logfields.Format(string(opts.Format)),
		logfields.ExportID(m.ID),
		slog.Int("plugins", len(m.Plugins)))
	return m, nil
}

// writeAtomic writes data via a pending file: temp file, fsync, rename.
func writeAtomic(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "export canceled").
			WithContext("path", path).
			Build()
	}

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create pending file").
			WithContext("path", path).
			Build()
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			slog.Debug("Cleanup pending export file", logfields.Path(path), logfields.Error(err))
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write export file").
			WithContext("path", path).
			Build()
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to replace export file").
			WithContext("path", path).
			Build()
	}
	return nil
}
