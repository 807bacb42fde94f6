package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	ferrors "git.home.luguber.info/inful/siteconfig/internal/foundation/errors"
	"git.home.luguber.info/inful/siteconfig/internal/logfields"
	"git.home.luguber.info/inful/siteconfig/internal/metrics"
	"git.home.luguber.info/inful/siteconfig/internal/plugin"
)

//go:embed site.yaml
var builtinSite []byte

// Sources reported in logs and metrics.
const (
	SourceBuiltin = "builtin"
	SourceFile    = "file"
	SourceBytes   = "bytes"
)

// Loader reads, decodes and validates site configurations.
type Loader struct {
	registry *plugin.Registry
	recorder metrics.Recorder
	envFiles []string
}

// Option customizes a Loader.
type Option func(*Loader)

// WithRegistry validates plugin options against reg instead of the default registry.
func WithRegistry(reg *plugin.Registry) Option {
	return func(l *Loader) { l.registry = reg }
}

// WithRecorder reports load outcomes to rec.
func WithRecorder(rec metrics.Recorder) Option {
	return func(l *Loader) { l.recorder = rec }
}

// WithEnvFiles replaces the .env files consulted by Load. An empty list disables them.
func WithEnvFiles(paths ...string) Option {
	return func(l *Loader) { l.envFiles = paths }
}

// NewLoader creates a loader using the default plugin registry and no metrics.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		registry: plugin.DefaultRegistry(),
		recorder: metrics.NoopRecorder{},
		envFiles: DefaultEnvFiles,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.registry == nil {
		l.registry = plugin.DefaultRegistry()
	}
	if l.recorder == nil {
		l.recorder = metrics.NoopRecorder{}
	}
	return l
}

// Registry returns the plugin registry used for validation.
func (l *Loader) Registry() *plugin.Registry {
	return l.registry
}

// Builtin returns the site configuration compiled into the binary. Each call
// decodes a fresh record, so callers never share state.
func Builtin() (*Config, error) {
	return NewLoader().Builtin()
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// Parse decodes and validates a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	return NewLoader().Parse(data)
}

// BuiltinYAML returns a copy of the embedded configuration document.
func BuiltinYAML() []byte {
	return bytes.Clone(builtinSite)
}

// Builtin returns the embedded site configuration.
func (l *Loader) Builtin() (*Config, error) {
	return l.load(SourceBuiltin, func() ([]byte, error) { return builtinSite, nil })
}

// Parse decodes and validates data without touching the environment.
func (l *Loader) Parse(data []byte) (*Config, error) {
	return l.load(SourceBytes, func() ([]byte, error) { return data, nil })
}

// Load reads the file at path, loads .env files, expands ${VAR} references in
// the document and validates the result.
func (l *Loader) Load(path string) (*Config, error) {
	return l.load(SourceFile, func() ([]byte, error) {
		if err := loadEnvFiles(l.envFiles); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to load .env file").
				Fatal().
				Build()
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.ConfigError(fmt.Sprintf("configuration file not found: %s", path)).
				WithContext("path", path).
				Build()
		}
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
				Fatal().
				WithContext("path", path).
				Build()
		}
		return expandEnv(data), nil
	})
}

func (l *Loader) load(source string, read func() ([]byte, error)) (*Config, error) {
	start := time.Now()

	data, err := read()
	if err != nil {
		l.recorder.ObserveLoad(source, time.Since(start), metrics.ResultFailed)
		return nil, err
	}

	cfg, err := decode(data)
	if err == nil {
		err = ValidateWith(cfg, l.registry)
	}
	if err != nil {
		field, invalid := FieldOf(err)
		if !invalid {
			l.recorder.ObserveLoad(source, time.Since(start), metrics.ResultFailed)
			return nil, err
		}
		l.recorder.IncValidationFailure(field)
		l.recorder.ObserveLoad(source, time.Since(start), metrics.ResultInvalid)
		slog.Debug("Configuration rejected", logfields.Source(source), logfields.Field(field), logfields.Error(err))
		return nil, err
	}

	elapsed := time.Since(start)
	l.recorder.ObserveLoad(source, elapsed, metrics.ResultSuccess)
	l.recorder.SetPlugins(len(cfg.Plugins))
	l.recorder.SetSocialLinks(len(cfg.SiteMetadata.Social))
	slog.Debug("Configuration loaded",
		logfields.Source(source),
		slog.Int("plugins", len(cfg.Plugins)),
		slog.Int("social", len(cfg.SiteMetadata.Social)),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return cfg, nil
}

// Init writes the embedded example configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ExistsError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			WithContext("path", configPath).
			Build()
	}
	if err := os.WriteFile(configPath, builtinSite, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
