package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"git.home.luguber.info/inful/siteconfig/internal/logfields"
	"git.home.luguber.info/inful/siteconfig/internal/plugin"
)

// Validate checks cfg against the default plugin registry.
func Validate(cfg *Config) error {
	return ValidateWith(cfg, plugin.DefaultRegistry())
}

// ValidateWith checks cfg field by field in declaration order and returns the
// first failure as a ConfigValidationError naming the field.
func ValidateWith(cfg *Config, reg *plugin.Registry) error {
	if cfg == nil {
		return invalidField("siteMetadata", "is required")
	}
	if reg == nil {
		reg = plugin.NewRegistry()
	}
	return newConfigurationValidator(cfg, reg).validate()
}

// configurationValidator coordinates validation across the record's sections.
type configurationValidator struct {
	config   *Config
	registry *plugin.Registry
}

func newConfigurationValidator(config *Config, reg *plugin.Registry) *configurationValidator {
	return &configurationValidator{config: config, registry: reg}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateMetadata(); err != nil {
		return err
	}
	if err := cv.validateHero(); err != nil {
		return err
	}
	if err := cv.validateSocial(); err != nil {
		return err
	}
	return cv.validatePlugins()
}

func (cv *configurationValidator) validateMetadata() error {
	md := cv.config.SiteMetadata
	if strings.TrimSpace(md.Title) == "" {
		return invalidField("siteMetadata.title", "is required")
	}
	if strings.TrimSpace(md.SiteURL) == "" {
		return invalidField("siteMetadata.siteUrl", "is required")
	}
	if err := checkAbsoluteURL(md.SiteURL); err != nil {
		return invalidField("siteMetadata.siteUrl", "%v", err)
	}
	return nil
}

func (cv *configurationValidator) validateHero() error {
	hero := cv.config.SiteMetadata.Hero
	if strings.TrimSpace(hero.Heading) == "" {
		return invalidField("siteMetadata.hero.heading", "is required")
	}
	if hero.MaxWidth <= 0 {
		return invalidField("siteMetadata.hero.maxWidth", "must be a positive number of pixels, got %d", hero.MaxWidth)
	}
	return nil
}

func (cv *configurationValidator) validateSocial() error {
	for i, link := range cv.config.SiteMetadata.Social {
		prefix := fmt.Sprintf("siteMetadata.social[%d]", i)
		if strings.TrimSpace(link.Name) == "" {
			return invalidField(prefix+".name", "is required")
		}
		if strings.TrimSpace(link.URL) == "" {
			return invalidField(prefix+".url", "is required")
		}
		if err := checkAbsoluteURL(link.URL); err != nil {
			return invalidField(prefix+".url", "%v", err)
		}
	}
	return nil
}

// validatePlugins checks identifiers, the theme-first rule and then lets every
// known plugin validate its own options.
func (cv *configurationValidator) validatePlugins() error {
	plugins := cv.config.Plugins
	for i, p := range plugins {
		if strings.TrimSpace(p.Resolve) == "" {
			return invalidField(fmt.Sprintf("plugins[%d].resolve", i), "is required")
		}
	}

	if len(plugins) > 0 {
		if t := cv.registry.TypeOf(plugins[0].Resolve); t != plugin.TypeTheme {
			return invalidField("plugins[0].resolve", "must reference a content theme, got %q (%s)", plugins[0].Resolve, t)
		}
	}

	for i, p := range plugins {
		err := cv.registry.ValidateEntry(p)
		if err == nil {
			continue
		}
		field := fmt.Sprintf("plugins[%d].options", i)
		reason := err.Error()
		var oe *plugin.OptionError
		if errors.As(err, &oe) {
			if oe.Key != "" {
				field += "." + oe.Key
			}
			reason = oe.Reason
		}
		slog.Debug("Plugin options rejected",
			logfields.Plugin(p.Resolve),
			logfields.PluginType(cv.registry.TypeOf(p.Resolve).String()),
			logfields.Field(field),
			logfields.Error(err))
		return invalidField(field, "%s (plugin %s)", reason, p.Resolve)
	}
	return nil
}

// checkAbsoluteURL requires a parseable URL with scheme and host.
func checkAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is not a valid URL: %v", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("must be an absolute URL with scheme and host, got %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https, got %q", u.Scheme)
	}
	return nil
}
